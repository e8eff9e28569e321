package domain

import (
	"strings"
	"time"
)

// Candidate is a transfer as submitted by the operator, before validation.
// Choice fields may hold Unselected; text fields may be blank. Nothing here
// has been checked yet.
type Candidate struct {
	Date           time.Time
	Centre         string
	TransferType   string
	Agency         string
	Nationality    string
	GroupType      string
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
	GLFirstName    string
	GLLastName     string
	GLCountryCode  string
	GLMobileNumber string
}

// Gate resolves the gating fields. Unselected or unknown values leave the
// corresponding Gate field zero.
func (c Candidate) Gate() Gate {
	tt, _ := ParseTransferType(c.TransferType)
	gt, _ := ParseGroupType(c.GroupType)
	return Gate{TransferType: tt, GroupType: gt}
}

// Normalize applies the derived-field rules that hold before validation:
//   - check-in is forced to N/A unless the transfer is an individual departure
//   - the timing set of the other direction is cleared
//   - in the extended profile, the centre-side location is filled from the
//     centre address when left blank (drop-off on arrival, pick-up on departure)
func (c Candidate) Normalize(p Profile) Candidate {
	g := c.Gate()
	if !g.ShowCheckIn() {
		c.CheckIn = CheckInNA
	}
	switch g.TransferType {
	case Arrival:
		c.ETD = ClockTime{}
	case Departure:
		c.ETA, c.ETA1, c.ETD1, c.ETA2 = ClockTime{}, ClockTime{}, ClockTime{}, ClockTime{}
	default:
		c.ETA, c.ETA1, c.ETD1, c.ETA2, c.ETD = ClockTime{}, ClockTime{}, ClockTime{}, ClockTime{}, ClockTime{}
	}
	if p == ProfileExtended {
		addr, ok := CentreAddress(c.Centre)
		if ok && g.TransferType == Arrival && strings.TrimSpace(c.DropOff) == "" {
			c.DropOff = addr
		}
		if ok && g.TransferType == Departure && strings.TrimSpace(c.PickUp) == "" {
			c.PickUp = addr
		}
	}
	return c
}

// Record builds the persisted form of a candidate that has already passed
// validation. Text is trimmed; the GL name and mobile are composed from
// their parts; location and timing fields outside the profile are dropped.
func (c Candidate) Record(p Profile) TransferRecord {
	g := c.Gate()
	r := TransferRecord{
		Date:         c.Date,
		Centre:       strings.TrimSpace(c.Centre),
		TransferType: g.TransferType,
		Agency:       strings.TrimSpace(c.Agency),
		Nationality:  strings.TrimSpace(c.Nationality),
		GroupType:    g.GroupType,
		Pax:          c.Pax,
		MeetAndGreet: strings.TrimSpace(c.MeetAndGreet),
		CheckIn:      strings.TrimSpace(c.CheckIn),
		FlightNumber: strings.TrimSpace(c.FlightNumber),
		Terminal:     strings.TrimSpace(c.Terminal),
		ETD:          c.ETD,
		GLCount:      c.GLCount,
		GLName:       strings.TrimSpace(c.GLFirstName) + " " + strings.TrimSpace(c.GLLastName),
		GLMobile:     DialPrefix(c.GLCountryCode) + " " + strings.TrimSpace(c.GLMobileNumber),
	}
	switch p {
	case ProfileExtended:
		r.PickUp = strings.TrimSpace(c.PickUp)
		r.DropOff = strings.TrimSpace(c.DropOff)
		r.ETA1, r.ETD1, r.ETA2 = c.ETA1, c.ETD1, c.ETA2
	default:
		r.AirportStation = strings.TrimSpace(c.AirportStation)
		r.ETA = c.ETA
	}
	return r
}
