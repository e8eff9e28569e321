// Package repo contains all persistence logic for the Transfer Tracker.
// TransferRepo is implemented three ways: a CSV file (the default), Postgres
// and SQLite. No business logic lives here, only storage and type mapping.
package repo

import (
	"context"
	"io"

	"github.com/pkordes/transfer-tracker/internal/domain"
)

// TransferRepo is an append-only store of transfer records.
// The service layer depends on this interface, not on a backend,
// which allows the service to be unit-tested with a mock.
type TransferRepo interface {
	// Load returns every persisted record in persisted order. When nothing
	// has been persisted yet it returns an empty, non-nil slice.
	Load(ctx context.Context) ([]domain.TransferRecord, error)

	// Append adds one record. It returns only after the full collection,
	// old and new, has reached persistent storage.
	Append(ctx context.Context, rec domain.TransferRecord) error

	// ImportMerge unions records onto the persisted collection, removes
	// full-row duplicates across the whole collection (keeping first
	// occurrences), then flushes. On error the persisted state is unchanged.
	ImportMerge(ctx context.Context, records []domain.TransferRecord) (domain.ImportResult, error)

	// ExportAll writes the whole persisted collection to w in the tabular
	// layout, header first, in persisted order.
	ExportAll(ctx context.Context, w io.Writer) error
}
