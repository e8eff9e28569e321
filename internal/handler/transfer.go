package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/service"
)

// formDate is a calendar date that treats null and a blank string as unset,
// so an empty date picker reaches the field rules instead of failing decode.
type formDate struct {
	openapi_types.Date
	set bool
}

func (d *formDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil && strings.TrimSpace(s) == "" {
		*d = formDate{}
		return nil
	}
	if err := d.Date.UnmarshalJSON(b); err != nil {
		return err
	}
	d.set = true
	return nil
}

// transferRequest is the POST /transfers body. Choice fields may carry the
// "-- Select --" placeholder; the service reports those as missing.
type transferRequest struct {
	Date           formDate `json:"date"`
	Centre         string   `json:"centre" validate:"max=200"`
	TransferType   string   `json:"transfer_type" validate:"max=50"`
	Agency         string   `json:"agency" validate:"max=200"`
	Nationality    string   `json:"nationality" validate:"max=100"`
	GroupType      string   `json:"group_type" validate:"max=50"`
	Pax            int      `json:"pax" validate:"min=1"`
	MeetAndGreet   string   `json:"meet_and_greet" validate:"max=50"`
	CheckIn        string   `json:"check_in" validate:"max=50"`
	FlightNumber   string   `json:"flight_number" validate:"max=200"`
	AirportStation string   `json:"airport_station" validate:"max=200"`
	PickUp         string   `json:"pick_up" validate:"max=200"`
	DropOff        string   `json:"drop_off" validate:"max=200"`
	Terminal       string   `json:"terminal" validate:"max=100"`
	ETA            string   `json:"eta"`
	ETA1           string   `json:"eta_1"`
	ETD1           string   `json:"etd_1"`
	ETA2           string   `json:"eta_2"`
	ETD            string   `json:"etd"`
	GLCount        int      `json:"gl_count" validate:"min=0"`
	GLFirstName    string   `json:"gl_first_name" validate:"max=100"`
	GLLastName     string   `json:"gl_last_name" validate:"max=100"`
	GLCountryCode  string   `json:"gl_country_code" validate:"max=50"`
	GLMobileNumber string   `json:"gl_mobile_number" validate:"max=50"`
}

// transferResponse is the JSON form of a persisted transfer.
// Unset times are null.
type transferResponse struct {
	Date           openapi_types.Date `json:"date"`
	DayOfWeek      string             `json:"day_of_week"`
	Centre         string             `json:"centre"`
	TransferType   string             `json:"transfer_type"`
	Agency         string             `json:"agency"`
	Nationality    string             `json:"nationality"`
	GroupType      string             `json:"group_type"`
	Pax            int                `json:"pax"`
	MeetAndGreet   string             `json:"meet_and_greet"`
	CheckIn        string             `json:"check_in"`
	FlightNumber   string             `json:"flight_number"`
	AirportStation string             `json:"airport_station,omitempty"`
	PickUp         string             `json:"pick_up,omitempty"`
	DropOff        string             `json:"drop_off,omitempty"`
	Terminal       string             `json:"terminal"`
	ETA            *string            `json:"eta,omitempty"`
	ETA1           *string            `json:"eta_1,omitempty"`
	ETD1           *string            `json:"etd_1,omitempty"`
	ETA2           *string            `json:"eta_2,omitempty"`
	ETD            *string            `json:"etd,omitempty"`
	GLCount        int                `json:"gl_count"`
	GLName         string             `json:"gl_name"`
	GLMobile       string             `json:"gl_mobile"`
}

type listResponse struct {
	Data  []transferResponse `json:"data"`
	Total int                `json:"total"`
}

type filterOptionsResponse struct {
	Field   string   `json:"field"`
	Options []string `json:"options"`
}

// CreateTransfer handles POST /transfers.
func (s *Server) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		requestError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		requestError(w, err)
		return
	}
	c, err := requestToCandidate(body)
	if err != nil {
		requestError(w, err)
		return
	}

	created, err := s.transfers.Submit(r.Context(), c)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transferToResponse(created))
}

// ListTransfers handles GET /transfers.
// ?field= names the filter column (default nationality); ?value= the value
// to match, where "All" or empty selects everything.
func (s *Server) ListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := s.transfers.List(r.Context(), service.Filter{Field: q.Get("field"), Value: q.Get("value")})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	data := make([]transferResponse, len(records))
	for i, rec := range records {
		data[i] = transferToResponse(rec)
	}
	writeJSON(w, http.StatusOK, listResponse{Data: data, Total: len(data)})
}

// ListFilterOptions handles GET /transfers/filters.
func (s *Server) ListFilterOptions(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		field = domain.FieldNationality
	}
	opts, err := s.transfers.FilterOptions(r.Context(), field)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterOptionsResponse{Field: field, Options: opts})
}

// --- mapping helpers --------------------------------------------------------

// requestToCandidate converts the request body into a domain.Candidate.
// Returns an error if a time field is not HH:MM.
func requestToCandidate(body transferRequest) (domain.Candidate, error) {
	c := domain.Candidate{
		Centre:         body.Centre,
		TransferType:   body.TransferType,
		Agency:         body.Agency,
		Nationality:    body.Nationality,
		GroupType:      body.GroupType,
		Pax:            body.Pax,
		MeetAndGreet:   body.MeetAndGreet,
		CheckIn:        body.CheckIn,
		FlightNumber:   body.FlightNumber,
		AirportStation: body.AirportStation,
		PickUp:         body.PickUp,
		DropOff:        body.DropOff,
		Terminal:       body.Terminal,
		GLCount:        body.GLCount,
		GLFirstName:    body.GLFirstName,
		GLLastName:     body.GLLastName,
		GLCountryCode:  body.GLCountryCode,
		GLMobileNumber: body.GLMobileNumber,
	}
	if body.Date.set {
		c.Date = body.Date.Time
	}
	times := []struct {
		name string
		src  string
		dst  *domain.ClockTime
	}{
		{domain.FieldETA, body.ETA, &c.ETA},
		{domain.FieldETA1, body.ETA1, &c.ETA1},
		{domain.FieldETD1, body.ETD1, &c.ETD1},
		{domain.FieldETA2, body.ETA2, &c.ETA2},
		{domain.FieldETD, body.ETD, &c.ETD},
	}
	for _, t := range times {
		ct, err := domain.ParseClockTime(t.src)
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dst = ct
	}
	return c, nil
}

func transferToResponse(r domain.TransferRecord) transferResponse {
	return transferResponse{
		Date:           openapi_types.Date{Time: r.Date},
		DayOfWeek:      r.DayOfWeek(),
		Centre:         r.Centre,
		TransferType:   string(r.TransferType),
		Agency:         r.Agency,
		Nationality:    r.Nationality,
		GroupType:      string(r.GroupType),
		Pax:            r.Pax,
		MeetAndGreet:   r.MeetAndGreet,
		CheckIn:        r.CheckIn,
		FlightNumber:   r.FlightNumber,
		AirportStation: r.AirportStation,
		PickUp:         r.PickUp,
		DropOff:        r.DropOff,
		Terminal:       r.Terminal,
		ETA:            clockPtr(r.ETA),
		ETA1:           clockPtr(r.ETA1),
		ETD1:           clockPtr(r.ETD1),
		ETA2:           clockPtr(r.ETA2),
		ETD:            clockPtr(r.ETD),
		GLCount:        r.GLCount,
		GLName:         r.GLName,
		GLMobile:       r.GLMobile,
	}
}

func clockPtr(c domain.ClockTime) *string {
	if !c.Valid {
		return nil
	}
	s := c.String()
	return &s
}
