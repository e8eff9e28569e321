// Package service contains the business logic for the Transfer Tracker.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No storage code lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/metrics"
	"github.com/pkordes/transfer-tracker/internal/repo"
)

// FilterAll is the filter value that selects every record.
const FilterAll = "All"

// Filter selects records whose Field equals Value.
// An empty Field means nationality; an empty Value or FilterAll selects all.
type Filter struct {
	Field string
	Value string
}

// TransferService implements submission and the filtered read view.
type TransferService struct {
	repo    repo.TransferRepo
	schema  domain.Schema
	metrics *metrics.Metrics
}

// NewTransferService constructs a TransferService for the given form profile.
// m may be nil.
func NewTransferService(r repo.TransferRepo, profile domain.Profile, m *metrics.Metrics) *TransferService {
	return &TransferService{repo: r, schema: domain.NewSchema(profile), metrics: m}
}

// Schema returns the schema submissions are validated against.
func (s *TransferService) Schema() domain.Schema { return s.schema }

// Submit normalises and validates c, then appends it to the store.
// Returns a *domain.ValidationError (errors.Is domain.ErrValidation) listing
// every failed rule when c is rejected; nothing is persisted in that case.
func (s *TransferService) Submit(ctx context.Context, c domain.Candidate) (domain.TransferRecord, error) {
	profile := s.schema.Profile()
	c = c.Normalize(profile)
	if msgs := Validate(s.schema, c); len(msgs) > 0 {
		s.metrics.Submission(metrics.ResultRejected)
		return domain.TransferRecord{}, &domain.ValidationError{Messages: msgs}
	}

	rec := c.Record(profile)
	if err := s.repo.Append(ctx, rec); err != nil {
		s.metrics.Submission(metrics.ResultFailed)
		return domain.TransferRecord{}, fmt.Errorf("service.TransferService.Submit: %w", err)
	}
	s.metrics.Submission(metrics.ResultAccepted)
	return rec, nil
}

// List returns the records matching f ordered by date ascending. Records on
// the same date keep their persisted order. The slice returned by the store
// is never reordered. Always returns a non-nil slice.
func (s *TransferService) List(ctx context.Context, f Filter) ([]domain.TransferRecord, error) {
	field, err := filterField(f.Field)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TransferService.List: %w", err)
	}

	out := slices.Clone(records)
	if v := strings.TrimSpace(f.Value); v != "" && v != FilterAll {
		out = make([]domain.TransferRecord, 0, len(records))
		for _, r := range records {
			if got, _ := r.FieldValue(field); got == v {
				out = append(out, r)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TransferRecord) int {
		return a.Date.Compare(b.Date)
	})
	if out == nil {
		return []domain.TransferRecord{}, nil
	}
	return out, nil
}

// FilterOptions returns FilterAll followed by the distinct non-empty values
// of field across the store, sorted.
func (s *TransferService) FilterOptions(ctx context.Context, field string) ([]string, error) {
	field, err := filterField(field)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TransferService.FilterOptions: %w", err)
	}
	var values []string
	for _, r := range records {
		if v, _ := r.FieldValue(field); v != "" {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return append([]string{FilterAll}, slices.Compact(values)...), nil
}

func filterField(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.FieldNationality, nil
	}
	if !slices.Contains(domain.FilterFields, name) {
		return "", &domain.ValidationError{Messages: []string{
			fmt.Sprintf("cannot filter by %q; use one of: %s", name, strings.Join(domain.FilterFields, ", ")),
		}}
	}
	return name, nil
}
