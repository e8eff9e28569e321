package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// csvTransferRepo keeps the whole collection in one CSV file.
// Every write rewrites the file through a temp file and a rename, so a
// failed flush never leaves a half-written collection behind.
type csvTransferRepo struct {
	path    string
	profile domain.Profile

	// mu serialises load-modify-flush cycles within this process.
	mu sync.Mutex
}

// NewCSVTransferRepo constructs a TransferRepo backed by the CSV file at path.
// The file need not exist yet; it is created on the first write.
func NewCSVTransferRepo(path string, profile domain.Profile) TransferRepo {
	return &csvTransferRepo{path: path, profile: profile}
}

// Load reads the file. A missing or zero-length file is an empty collection.
func (r *csvTransferRepo) Load(ctx context.Context) ([]domain.TransferRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.TransferRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.CSVTransferRepo.Load: %w", err)
	}
	defer f.Close()

	records, err := tabular.Read(f, r.profile)
	if errors.Is(err, domain.ErrEmptyInput) {
		return []domain.TransferRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.CSVTransferRepo.Load: %s: %w", r.path, err)
	}
	return records, nil
}

func (r *csvTransferRepo) Append(ctx context.Context, rec domain.TransferRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.CSVTransferRepo.Append: %w", err)
	}
	if err := r.flush(append(records, rec)); err != nil {
		return fmt.Errorf("repo.CSVTransferRepo.Append: %w", err)
	}
	return nil
}

func (r *csvTransferRepo) ImportMerge(ctx context.Context, incoming []domain.TransferRecord) (domain.ImportResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.Load(ctx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.CSVTransferRepo.ImportMerge: %w", err)
	}
	merged, res := tabular.Merge(r.profile, existing, incoming)
	if err := r.flush(merged); err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.CSVTransferRepo.ImportMerge: %w", err)
	}
	return res, nil
}

func (r *csvTransferRepo) ExportAll(ctx context.Context, w io.Writer) error {
	records, err := r.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.CSVTransferRepo.ExportAll: %w", err)
	}
	if err := tabular.Write(w, r.profile, records); err != nil {
		return fmt.Errorf("repo.CSVTransferRepo.ExportAll: %w", err)
	}
	return nil
}

// flush writes records to a temp file beside the target, syncs it and
// renames it into place.
func (r *csvTransferRepo) flush(records []domain.TransferRecord) (retErr error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(r.path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := tabular.Write(f, r.profile, records); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
