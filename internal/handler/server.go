// Package handler implements the HTTP handlers for the Transfer Tracker API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, transfer.go, export.go, ...) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/service"
)

// TransferServicer defines the business operations the transfer handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching storage or the service layer.
type TransferServicer interface {
	Schema() domain.Schema
	Submit(ctx context.Context, c domain.Candidate) (domain.TransferRecord, error)
	List(ctx context.Context, f service.Filter) ([]domain.TransferRecord, error)
	FilterOptions(ctx context.Context, field string) ([]string, error)
}

// ExportServicer defines the bulk import/export operations.
type ExportServicer interface {
	Import(ctx context.Context, r io.Reader) (domain.ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
	Archive(ctx context.Context) (archive.Info, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	transfers TransferServicer
	exports   ExportServicer
	log       *slog.Logger
	validate  *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(transfers TransferServicer, exports ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names in validation messages rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{transfers: transfers, exports: exports, log: log, validate: v}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes registers every API endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/schema", s.GetSchema)
	r.Get("/centres", s.ListCentres)

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", s.CreateTransfer)
		r.Get("/", s.ListTransfers)
		r.Get("/filters", s.ListFilterOptions)
		r.Post("/import", s.ImportTransfers)
		r.Get("/export", s.ExportTransfers)
		r.Post("/export/archive", s.ArchiveExport)
	})
}

// Handler returns a standalone router serving Routes. Used by tests and by
// main when no extra middleware is needed.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
