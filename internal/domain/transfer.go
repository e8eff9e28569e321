// Package domain contains the core data types for the Transfer Tracker.
// This package has zero external dependencies and is imported by every other
// internal package (tabular, repo, service, handler).
package domain

import (
	"strings"
	"time"
)

// Unselected is the placeholder a choice field carries until the operator
// picks a value. It is treated exactly like a blank value.
const Unselected = "-- Select --"

// CheckInNA is the stored check-in value for every transfer that is not an
// individual departure.
const CheckInNA = "N/A"

// DateLayout is the calendar date format used in persisted rows and JSON.
const DateLayout = "2006-01-02"

// TransferType is the direction of a transfer.
type TransferType string

const (
	Arrival   TransferType = "Arrival"
	Departure TransferType = "Departure"
)

// ParseTransferType returns the TransferType named by s and whether s named one.
func ParseTransferType(s string) (TransferType, bool) {
	switch t := TransferType(strings.TrimSpace(s)); t {
	case Arrival, Departure:
		return t, true
	}
	return "", false
}

// GroupType says whether the transfer carries a group or a single traveller.
type GroupType string

const (
	Group      GroupType = "Group"
	Individual GroupType = "Individual"
)

// ParseGroupType returns the GroupType named by s and whether s named one.
func ParseGroupType(s string) (GroupType, bool) {
	switch g := GroupType(strings.TrimSpace(s)); g {
	case Group, Individual:
		return g, true
	}
	return "", false
}

// Gate is the pair of fields that decides which other fields are required.
// A zero TransferType or GroupType means the operator has not chosen one yet.
type Gate struct {
	TransferType TransferType
	GroupType    GroupType
}

// ShowCheckIn reports whether check-in applies: individual departures only.
func (g Gate) ShowCheckIn() bool {
	return g.TransferType == Departure && g.GroupType == Individual
}

// TransferRecord is one logged transfer, as persisted.
// Only one timing set is populated: ETA/ETA1/ETD1/ETA2 for arrivals, ETD for
// departures. The simple profile uses AirportStation and ETA; the extended
// profile uses PickUp, DropOff and ETA1/ETD1/ETA2.
type TransferRecord struct {
	Date           time.Time
	Centre         string
	TransferType   TransferType
	Agency         string
	Nationality    string
	GroupType      GroupType
	Pax            int
	MeetAndGreet   string
	CheckIn        string
	FlightNumber   string
	AirportStation string
	PickUp         string
	DropOff        string
	Terminal       string
	ETA            ClockTime
	ETA1           ClockTime
	ETD1           ClockTime
	ETA2           ClockTime
	ETD            ClockTime
	GLCount        int
	GLName         string
	GLMobile       string
}

// DayOfWeek returns the English weekday name of the transfer date.
// It is always derived; there is no stored day field to drift out of sync.
func (r TransferRecord) DayOfWeek() string {
	return r.Date.Weekday().String()
}

// Gate returns the record's gating fields.
func (r TransferRecord) Gate() Gate {
	return Gate{TransferType: r.TransferType, GroupType: r.GroupType}
}

// FilterFields lists the record fields that can be used with FieldValue,
// in display order.
var FilterFields = []string{
	FieldCentre,
	FieldTransferType,
	FieldAgency,
	FieldNationality,
	FieldGroupType,
	FieldMeetAndGreet,
	FieldCheckIn,
}

// FieldValue returns the value of a filterable field by name.
// The second result is false for names not in FilterFields.
func (r TransferRecord) FieldValue(name string) (string, bool) {
	switch name {
	case FieldCentre:
		return r.Centre, true
	case FieldTransferType:
		return string(r.TransferType), true
	case FieldAgency:
		return r.Agency, true
	case FieldNationality:
		return r.Nationality, true
	case FieldGroupType:
		return string(r.GroupType), true
	case FieldMeetAndGreet:
		return r.MeetAndGreet, true
	case FieldCheckIn:
		return r.CheckIn, true
	}
	return "", false
}

// ImportResult summarises an import merge.
type ImportResult struct {
	// Received is the number of rows in the imported batch.
	Received int
	// Added is how many rows the persisted collection grew by.
	Added int
	// DuplicatesRemoved counts rows dropped because an identical row was
	// already present, whether it came from the batch or the existing store.
	DuplicatesRemoved int
	// Total is the size of the persisted collection after the merge.
	Total int
}
