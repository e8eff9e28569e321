package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Profile selects which location and timing fields a transfer carries.
type Profile string

const (
	// ProfileSimple records one airport/station and a single ETA or ETD.
	ProfileSimple Profile = "simple"
	// ProfileExtended records pick-up/drop-off and a three-point arrival timing.
	ProfileExtended Profile = "extended"
)

// ParseProfile returns the Profile named by s.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case ProfileSimple, ProfileExtended:
		return p, nil
	}
	return "", fmt.Errorf("unknown form profile %q", s)
}

// Field names. They double as JSON keys in the HTTP API.
const (
	FieldDate           = "date"
	FieldDay            = "day_of_week"
	FieldCentre         = "centre"
	FieldTransferType   = "transfer_type"
	FieldAgency         = "agency"
	FieldNationality    = "nationality"
	FieldGroupType      = "group_type"
	FieldPax            = "pax"
	FieldMeetAndGreet   = "meet_and_greet"
	FieldCheckIn        = "check_in"
	FieldFlightNumber   = "flight_number"
	FieldAirportStation = "airport_station"
	FieldPickUp         = "pick_up"
	FieldDropOff        = "drop_off"
	FieldTerminal       = "terminal"
	FieldETA            = "eta"
	FieldETA1           = "eta_1"
	FieldETD1           = "etd_1"
	FieldETA2           = "eta_2"
	FieldETD            = "etd"
	FieldGLCount        = "gl_count"
	FieldGLName         = "gl_name"
	FieldGLMobile       = "gl_mobile"
)

// FieldKind describes the value domain of a field.
type FieldKind string

const (
	KindDate    FieldKind = "date"
	KindDerived FieldKind = "derived"
	KindChoice  FieldKind = "choice"
	KindText    FieldKind = "text"
	KindNumber  FieldKind = "number"
	KindTime    FieldKind = "time"
	KindPhone   FieldKind = "phone"
)

// Field declares one transfer field: its persisted column, its domain, when
// it is required and how a candidate is judged to be missing it.
type Field struct {
	Name    string
	Label   string
	Column  string
	Kind    FieldKind
	Choices []string
	// Message is reported when the field is required and missing.
	Message string

	required func(Gate) bool
	missing  func(Candidate) bool
}

// Required reports whether the field must be filled in under g.
func (f Field) Required(g Gate) bool {
	return f.required != nil && f.required(g)
}

// Missing reports whether c leaves the field blank, unselected or unset.
func (f Field) Missing(c Candidate) bool {
	return f.missing != nil && f.missing(c)
}

// Schema is the ordered field set of one profile.
type Schema struct {
	profile Profile
	fields  []Field
}

// NewSchema returns the schema of profile p. Unknown profiles fall back to
// the simple layout.
func NewSchema(p Profile) Schema {
	if p != ProfileExtended {
		p = ProfileSimple
	}
	return Schema{profile: p, fields: buildFields(p)}
}

// Profile returns the schema's profile.
func (s Schema) Profile() Profile { return s.profile }

// Fields returns the fields in declaration order.
func (s Schema) Fields() []Field { return slices.Clone(s.fields) }

// Columns returns the persisted column headers in declaration order.
func (s Schema) Columns() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Column
	}
	return out
}

// RequiredFields returns the names of the fields that must be non-blank for
// a candidate with gate g to pass validation, in declaration order.
func (s Schema) RequiredFields(g Gate) []string {
	var out []string
	for _, f := range s.fields {
		if f.Required(g) {
			out = append(out, f.Name)
		}
	}
	return out
}

func always(Gate) bool      { return true }
func onArrival(g Gate) bool { return g.TransferType == Arrival }
func onDeparture(g Gate) bool {
	return g.TransferType == Departure
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func textMissing(get func(Candidate) string) func(Candidate) bool {
	return func(c Candidate) bool { return blank(get(c)) }
}

// choiceMissing treats blank, Unselected and out-of-domain values alike.
func choiceMissing(choices []string, get func(Candidate) string) func(Candidate) bool {
	return func(c Candidate) bool {
		v := strings.TrimSpace(get(c))
		return v == "" || v == Unselected || !slices.Contains(choices, v)
	}
}

func timeMissing(get func(Candidate) ClockTime) func(Candidate) bool {
	return func(c Candidate) bool { return !get(c).Valid }
}

func buildFields(p Profile) []Field {
	fields := []Field{
		{
			Name: FieldDate, Label: "Date", Column: "Date", Kind: KindDate,
			Message:  "Please select a Date.",
			required: always,
			missing:  func(c Candidate) bool { return c.Date.IsZero() },
		},
		{Name: FieldDay, Label: "Day of the Week", Column: "Day", Kind: KindDerived},
		{
			Name: FieldCentre, Label: "Centre", Column: "Centre", Kind: KindChoice,
			Choices:  CentreNames(),
			Message:  "Please select a Centre.",
			required: always,
			missing:  choiceMissing(CentreNames(), func(c Candidate) string { return c.Centre }),
		},
		{
			Name: FieldTransferType, Label: "Transfer Type", Column: "Transfer Type", Kind: KindChoice,
			Choices:  TransferTypes,
			Message:  "Please select a Transfer Type.",
			required: always,
			missing:  choiceMissing(TransferTypes, func(c Candidate) string { return c.TransferType }),
		},
		{
			Name: FieldAgency, Label: "Agency Name (or type 'Direct enrolment')", Column: "Agency", Kind: KindText,
			Message:  "Please enter the Agency Name or type 'Direct enrolment'.",
			required: always,
			missing:  textMissing(func(c Candidate) string { return c.Agency }),
		},
		{
			Name: FieldNationality, Label: "Nationality", Column: "Nationality", Kind: KindChoice,
			Choices:  Nationalities,
			Message:  "Please select a Nationality.",
			required: always,
			missing:  choiceMissing(Nationalities, func(c Candidate) string { return c.Nationality }),
		},
		{
			Name: FieldGroupType, Label: "Grp/Ind", Column: "Grp/Ind", Kind: KindChoice,
			Choices:  GroupTypes,
			Message:  "Please select Group or Individual.",
			required: always,
			missing:  choiceMissing(GroupTypes, func(c Candidate) string { return c.GroupType }),
		},
		{Name: FieldPax, Label: "Pax", Column: "Pax", Kind: KindNumber},
		{
			Name: FieldMeetAndGreet, Label: "Meet & Greet", Column: "Meet & Greet", Kind: KindChoice,
			Choices:  YesNo,
			Message:  "Please select Meet & Greet option.",
			required: always,
			missing:  choiceMissing(YesNo, func(c Candidate) string { return c.MeetAndGreet }),
		},
		{
			Name: FieldCheckIn, Label: "Check In (only for Ind. Departures)", Column: "Check In", Kind: KindChoice,
			Choices:  YesNo,
			Message:  "Please select Check In option.",
			required: Gate.ShowCheckIn,
			missing:  choiceMissing(YesNo, func(c Candidate) string { return c.CheckIn }),
		},
		{
			Name: FieldFlightNumber, Label: "Flight / Train Number", Column: "Flight / Train Number", Kind: KindText,
			Message:  "Please enter Flight / Train Number.",
			required: always,
			missing:  textMissing(func(c Candidate) string { return c.FlightNumber }),
		},
	}

	if p == ProfileExtended {
		fields = append(fields,
			Field{
				Name: FieldPickUp, Label: "Pick Up", Column: "Pick Up", Kind: KindText,
				Message:  "Please enter Pick Up location.",
				required: always,
				missing:  textMissing(func(c Candidate) string { return c.PickUp }),
			},
			Field{
				Name: FieldDropOff, Label: "Drop Off", Column: "Drop Off", Kind: KindText,
				Message:  "Please enter Drop Off location.",
				required: always,
				missing:  textMissing(func(c Candidate) string { return c.DropOff }),
			},
		)
	} else {
		fields = append(fields, Field{
			Name: FieldAirportStation, Label: "Airport / Train Station", Column: "Airport / Train Station", Kind: KindText,
			Message:  "Please enter Airport / Train Station.",
			required: always,
			missing:  textMissing(func(c Candidate) string { return c.AirportStation }),
		})
	}

	fields = append(fields, Field{
		Name: FieldTerminal, Label: "Terminal", Column: "Terminal", Kind: KindText,
		Message:  "Please enter Terminal.",
		required: always,
		missing:  textMissing(func(c Candidate) string { return c.Terminal }),
	})

	if p == ProfileExtended {
		fields = append(fields,
			Field{
				Name: FieldETA1, Label: "ETA 1 (arrival in country)", Column: "ETA 1", Kind: KindTime,
				Message:  "Please enter ETA 1 (arrival in country) for arrival.",
				required: onArrival,
				missing:  timeMissing(func(c Candidate) ClockTime { return c.ETA1 }),
			},
			Field{
				Name: FieldETD1, Label: "ETD 1 (departure from airport / station)", Column: "ETD 1", Kind: KindTime,
				Message:  "Please enter ETD 1 (departure from airport / station) for arrival.",
				required: onArrival,
				missing:  timeMissing(func(c Candidate) ClockTime { return c.ETD1 }),
			},
			Field{
				Name: FieldETA2, Label: "ETA 2 (arrival at centre)", Column: "ETA 2", Kind: KindTime,
				Message:  "Please enter ETA 2 (arrival at centre) for arrival.",
				required: onArrival,
				missing:  timeMissing(func(c Candidate) ClockTime { return c.ETA2 }),
			},
		)
	} else {
		fields = append(fields, Field{
			Name: FieldETA, Label: "ETA", Column: "ETA", Kind: KindTime,
			Message:  "Please enter ETA for arrival.",
			required: onArrival,
			missing:  timeMissing(func(c Candidate) ClockTime { return c.ETA }),
		})
	}

	return append(fields,
		Field{
			Name: FieldETD, Label: "ETD", Column: "ETD", Kind: KindTime,
			Message:  "Please enter ETD for departure.",
			required: onDeparture,
			missing:  timeMissing(func(c Candidate) ClockTime { return c.ETD }),
		},
		Field{Name: FieldGLCount, Label: "GL Nr (number of group leaders)", Column: "GL Nr", Kind: KindNumber},
		Field{
			Name: FieldGLName, Label: "Main GL / Ind Name", Column: "Main GL / Ind Name", Kind: KindText,
			Message:  "Please enter the Main GL / Ind First and Last Name.",
			required: always,
			missing: func(c Candidate) bool {
				return blank(c.GLFirstName) || blank(c.GLLastName)
			},
		},
		Field{
			Name: FieldGLMobile, Label: "GL / Ind Mobile Nr", Column: "GL / Ind Mobile Nr", Kind: KindPhone,
			Choices:  CountryCodes,
			Message:  "Please select a country code and enter a mobile number.",
			required: always,
			missing: func(c Candidate) bool {
				return choiceMissing(CountryCodes, func(c Candidate) string { return c.GLCountryCode })(c) ||
					blank(c.GLMobileNumber)
			},
		},
	)
}
