package handler

import (
	"net/http"

	"github.com/pkordes/transfer-tracker/internal/domain"
)

type fieldResponse struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Column   string   `json:"column"`
	Kind     string   `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	Required bool     `json:"required"`
	Message  string   `json:"message,omitempty"`
}

type schemaResponse struct {
	Profile     string          `json:"profile"`
	Unselected  string          `json:"unselected"`
	ShowCheckIn bool            `json:"show_check_in"`
	Fields      []fieldResponse `json:"fields"`
}

// GetSchema handles GET /schema.
// ?transfer_type= and ?group_type= select the gate the "required" flags are
// computed for; either may be omitted.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tt, _ := domain.ParseTransferType(q.Get("transfer_type"))
	gt, _ := domain.ParseGroupType(q.Get("group_type"))
	gate := domain.Gate{TransferType: tt, GroupType: gt}

	schema := s.transfers.Schema()
	fields := schema.Fields()
	resp := schemaResponse{
		Profile:     string(schema.Profile()),
		Unselected:  domain.Unselected,
		ShowCheckIn: gate.ShowCheckIn(),
		Fields:      make([]fieldResponse, len(fields)),
	}
	for i, f := range fields {
		resp.Fields[i] = fieldResponse{
			Name:     f.Name,
			Label:    f.Label,
			Column:   f.Column,
			Kind:     string(f.Kind),
			Choices:  f.Choices,
			Required: f.Required(gate),
			Message:  f.Message,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCentres handles GET /centres.
func (s *Server) ListCentres(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Centres)
}
