package repo

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// sqliteTransferRepo stores transfers in a local SQLite database file.
// Dates are TEXT in DateLayout; times are TEXT "HH:MM" or NULL when unset.
type sqliteTransferRepo struct {
	db      *sql.DB
	profile domain.Profile
}

// NewSQLiteTransferRepo constructs a TransferRepo over an open SQLite handle.
// The transfers table must already exist (see migrations.Up).
func NewSQLiteTransferRepo(db *sql.DB, profile domain.Profile) TransferRepo {
	return &sqliteTransferRepo{db: db, profile: profile}
}

// OpenSQLite opens the SQLite database at path with settings suited to a
// single-writer process.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: pragma: %w", err)
	}
	return db, nil
}

const sqliteInsert = `
	INSERT INTO transfers (
		transfer_date, centre, transfer_type, agency, nationality,
		group_type, pax, meet_and_greet, check_in, flight_number,
		airport_station, pick_up, drop_off, terminal,
		eta, eta_1, etd_1, eta_2, etd,
		gl_count, gl_name, gl_mobile)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *sqliteTransferRepo) Load(ctx context.Context) ([]domain.TransferRecord, error) {
	records, err := sqliteLoad(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteTransferRepo.Load: %w", err)
	}
	return records, nil
}

func (r *sqliteTransferRepo) Append(ctx context.Context, rec domain.TransferRecord) error {
	if _, err := r.db.ExecContext(ctx, sqliteInsert, sqliteValues(rec)...); err != nil {
		return fmt.Errorf("repo.SQLiteTransferRepo.Append: %w", err)
	}
	return nil
}

func (r *sqliteTransferRepo) ImportMerge(ctx context.Context, incoming []domain.TransferRecord) (res domain.ImportResult, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := sqliteLoad(ctx, tx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: %w", err)
	}
	merged, res := tabular.Merge(r.profile, existing, incoming)

	if _, err := tx.ExecContext(ctx, `DELETE FROM transfers`); err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: prepare: %w", err)
	}
	defer stmt.Close()
	for _, rec := range merged {
		if _, err := stmt.ExecContext(ctx, sqliteValues(rec)...); err != nil {
			return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.SQLiteTransferRepo.ImportMerge: commit: %w", err)
	}
	return res, nil
}

func (r *sqliteTransferRepo) ExportAll(ctx context.Context, w io.Writer) error {
	records, err := r.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.SQLiteTransferRepo.ExportAll: %w", err)
	}
	if err := tabular.Write(w, r.profile, records); err != nil {
		return fmt.Errorf("repo.SQLiteTransferRepo.ExportAll: %w", err)
	}
	return nil
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func sqliteLoad(ctx context.Context, q sqlQuerier) ([]domain.TransferRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT transfer_date, centre, transfer_type, agency, nationality,
		       group_type, pax, meet_and_greet, check_in, flight_number,
		       airport_station, pick_up, drop_off, terminal,
		       eta, eta_1, etd_1, eta_2, etd,
		       gl_count, gl_name, gl_mobile
		FROM transfers
		ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []domain.TransferRecord{}
	for rows.Next() {
		var (
			rec                        domain.TransferRecord
			date, tt, gt               string
			eta, eta1, etd1, eta2, etd sql.NullString
		)
		err := rows.Scan(
			&date, &rec.Centre, &tt, &rec.Agency, &rec.Nationality,
			&gt, &rec.Pax, &rec.MeetAndGreet, &rec.CheckIn, &rec.FlightNumber,
			&rec.AirportStation, &rec.PickUp, &rec.DropOff, &rec.Terminal,
			&eta, &eta1, &etd1, &eta2, &etd,
			&rec.GLCount, &rec.GLName, &rec.GLMobile,
		)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if rec.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, fmt.Errorf("scan: transfer_date: %w", err)
		}
		rec.TransferType = domain.TransferType(tt)
		rec.GroupType = domain.GroupType(gt)
		for _, t := range []struct {
			src sql.NullString
			dst *domain.ClockTime
		}{{eta, &rec.ETA}, {eta1, &rec.ETA1}, {etd1, &rec.ETD1}, {eta2, &rec.ETA2}, {etd, &rec.ETD}} {
			if !t.src.Valid {
				continue
			}
			if *t.dst, err = domain.ParseClockTime(t.src.String); err != nil {
				return nil, fmt.Errorf("scan: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}

func sqliteValues(rec domain.TransferRecord) []any {
	return []any{
		rec.Date.Format(domain.DateLayout),
		rec.Centre, string(rec.TransferType), rec.Agency, rec.Nationality,
		string(rec.GroupType), rec.Pax, rec.MeetAndGreet, rec.CheckIn, rec.FlightNumber,
		rec.AirportStation, rec.PickUp, rec.DropOff, rec.Terminal,
		nullClock(rec.ETA), nullClock(rec.ETA1), nullClock(rec.ETD1), nullClock(rec.ETA2), nullClock(rec.ETD),
		rec.GLCount, rec.GLName, rec.GLMobile,
	}
}

func nullClock(c domain.ClockTime) sql.NullString {
	return sql.NullString{String: c.String(), Valid: c.Valid}
}
