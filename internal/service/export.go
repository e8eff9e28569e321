package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/metrics"
	"github.com/pkordes/transfer-tracker/internal/repo"
	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// ExportService moves whole collections in and out of the store in the
// tabular layout: import-merge, full export and archived export snapshots.
type ExportService struct {
	repo    repo.TransferRepo
	profile domain.Profile
	archive archive.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExportService constructs an ExportService. store may be nil, in which
// case Archive returns domain.ErrArchiveDisabled. m may be nil.
func NewExportService(r repo.TransferRepo, profile domain.Profile, store archive.Store, m *metrics.Metrics) *ExportService {
	return &ExportService{repo: r, profile: profile, archive: store, metrics: m, now: time.Now}
}

// Import decodes a tabular file and merges it into the store.
// Decoding errors wrap domain.ErrEmptyInput, domain.ErrSchemaMismatch or
// domain.ErrMalformedRow; in every error case the store is left untouched.
func (s *ExportService) Import(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	records, err := tabular.Read(r, s.profile)
	if err != nil {
		s.metrics.Import(metrics.ResultRejected, 0, 0)
		return domain.ImportResult{}, fmt.Errorf("service.ExportService.Import: %w", err)
	}
	res, err := s.repo.ImportMerge(ctx, records)
	if err != nil {
		s.metrics.Import(metrics.ResultFailed, 0, 0)
		return domain.ImportResult{}, fmt.Errorf("service.ExportService.Import: %w", err)
	}
	s.metrics.Import(metrics.ResultAccepted, res.Added, res.DuplicatesRemoved)
	return res, nil
}

// Export writes the full persisted collection to w.
func (s *ExportService) Export(ctx context.Context, w io.Writer) error {
	if err := s.repo.ExportAll(ctx, w); err != nil {
		return fmt.Errorf("service.ExportService.Export: %w", err)
	}
	s.metrics.Export()
	return nil
}

// Archive stores a full export in the configured archive under
// exports/<date>/<id>/all_transfers.csv and returns where it can be fetched.
func (s *ExportService) Archive(ctx context.Context) (archive.Info, error) {
	if s.archive == nil {
		return archive.Info{}, domain.ErrArchiveDisabled
	}
	var buf bytes.Buffer
	if err := s.repo.ExportAll(ctx, &buf); err != nil {
		return archive.Info{}, fmt.Errorf("service.ExportService.Archive: %w", err)
	}
	key := path.Join("exports", s.now().UTC().Format(domain.DateLayout), uuid.NewString(), tabular.ExportFilename)
	info, err := s.archive.Put(ctx, key, buf.Bytes(), tabular.ContentType)
	if err != nil {
		return archive.Info{}, fmt.Errorf("service.ExportService.Archive: %w", err)
	}
	s.metrics.Export()
	return info, nil
}

// IsImportInputError reports whether err was caused by the imported file
// itself rather than by storage.
func IsImportInputError(err error) bool {
	return errors.Is(err, domain.ErrEmptyInput) ||
		errors.Is(err, domain.ErrSchemaMismatch) ||
		errors.Is(err, domain.ErrMalformedRow)
}
