package repo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so ImportMerge stays atomic inside a test transaction too.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// pgColumns are the transfers table columns written and read by this repo,
// in a fixed order shared by scanTransfer, transferValues and CopyFrom.
var pgColumns = []string{
	"transfer_date", "centre", "transfer_type", "agency", "nationality",
	"group_type", "pax", "meet_and_greet", "check_in", "flight_number",
	"airport_station", "pick_up", "drop_off", "terminal",
	"eta", "eta_1", "etd_1", "eta_2", "etd",
	"gl_count", "gl_name", "gl_mobile",
}

// pgTransferRepo is the Postgres implementation of TransferRepo.
// The table carries the columns of both profiles; the profile only decides
// which of them appear in exports.
type pgTransferRepo struct {
	db      db
	profile domain.Profile
}

// NewPostgresTransferRepo constructs a TransferRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresTransferRepo(db db, profile domain.Profile) TransferRepo {
	return &pgTransferRepo{db: db, profile: profile}
}

func (r *pgTransferRepo) Load(ctx context.Context) ([]domain.TransferRecord, error) {
	records, err := loadTransfers(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresTransferRepo.Load: %w", err)
	}
	return records, nil
}

func (r *pgTransferRepo) Append(ctx context.Context, rec domain.TransferRecord) error {
	const q = `
		INSERT INTO transfers (
			transfer_date, centre, transfer_type, agency, nationality,
			group_type, pax, meet_and_greet, check_in, flight_number,
			airport_station, pick_up, drop_off, terminal,
			eta, eta_1, etd_1, eta_2, etd,
			gl_count, gl_name, gl_mobile)
		VALUES (
			@transfer_date, @centre, @transfer_type, @agency, @nationality,
			@group_type, @pax, @meet_and_greet, @check_in, @flight_number,
			@airport_station, @pick_up, @drop_off, @terminal,
			@eta, @eta_1, @etd_1, @eta_2, @etd,
			@gl_count, @gl_name, @gl_mobile)`

	args := pgx.NamedArgs{}
	for i, v := range transferValues(rec) {
		args[pgColumns[i]] = v
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.PostgresTransferRepo.Append: %w", err)
	}
	return nil
}

// ImportMerge rewrites the table inside one transaction: the merged,
// deduplicated collection replaces the old rows via COPY.
func (r *pgTransferRepo) ImportMerge(ctx context.Context, incoming []domain.TransferRecord) (res domain.ImportResult, retErr error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.PostgresTransferRepo.ImportMerge: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, err := loadTransfers(ctx, tx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.PostgresTransferRepo.ImportMerge: %w", err)
	}
	merged, res := tabular.Merge(r.profile, existing, incoming)

	if _, err := tx.Exec(ctx, `DELETE FROM transfers`); err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.PostgresTransferRepo.ImportMerge: clear: %w", err)
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"transfers"}, pgColumns,
		pgx.CopyFromSlice(len(merged), func(i int) ([]any, error) {
			return transferValues(merged[i]), nil
		}))
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.PostgresTransferRepo.ImportMerge: copy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ImportResult{}, fmt.Errorf("repo.PostgresTransferRepo.ImportMerge: commit: %w", err)
	}
	return res, nil
}

func (r *pgTransferRepo) ExportAll(ctx context.Context, w io.Writer) error {
	records, err := r.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.PostgresTransferRepo.ExportAll: %w", err)
	}
	if err := tabular.Write(w, r.profile, records); err != nil {
		return fmt.Errorf("repo.PostgresTransferRepo.ExportAll: %w", err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadTransfers returns all rows ordered by insertion sequence.
func loadTransfers(ctx context.Context, q querier) ([]domain.TransferRecord, error) {
	const query = `
		SELECT transfer_date, centre, transfer_type, agency, nationality,
		       group_type, pax, meet_and_greet, check_in, flight_number,
		       airport_station, pick_up, drop_off, terminal,
		       eta, eta_1, etd_1, eta_2, etd,
		       gl_count, gl_name, gl_mobile
		FROM transfers
		ORDER BY seq`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.TransferRecord{}
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransfer maps a single row into a domain.TransferRecord, converting
// the nullable TIME columns into ClockTime values.
func scanTransfer(s scanner) (domain.TransferRecord, error) {
	var (
		rec                        domain.TransferRecord
		date                       pgtype.Date
		tt, gt                     string
		eta, eta1, etd1, eta2, etd pgtype.Time
	)
	err := s.Scan(
		&date, &rec.Centre, &tt, &rec.Agency, &rec.Nationality,
		&gt, &rec.Pax, &rec.MeetAndGreet, &rec.CheckIn, &rec.FlightNumber,
		&rec.AirportStation, &rec.PickUp, &rec.DropOff, &rec.Terminal,
		&eta, &eta1, &etd1, &eta2, &etd,
		&rec.GLCount, &rec.GLName, &rec.GLMobile,
	)
	if err != nil {
		return domain.TransferRecord{}, err
	}
	rec.Date = date.Time
	rec.TransferType = domain.TransferType(tt)
	rec.GroupType = domain.GroupType(gt)
	rec.ETA = clockFromPg(eta)
	rec.ETA1 = clockFromPg(eta1)
	rec.ETD1 = clockFromPg(etd1)
	rec.ETA2 = clockFromPg(eta2)
	rec.ETD = clockFromPg(etd)
	return rec, nil
}

// transferValues returns rec's column values in pgColumns order.
func transferValues(rec domain.TransferRecord) []any {
	return []any{
		pgtype.Date{Time: rec.Date, Valid: true},
		rec.Centre, string(rec.TransferType), rec.Agency, rec.Nationality,
		string(rec.GroupType), rec.Pax, rec.MeetAndGreet, rec.CheckIn, rec.FlightNumber,
		rec.AirportStation, rec.PickUp, rec.DropOff, rec.Terminal,
		clockToPg(rec.ETA), clockToPg(rec.ETA1), clockToPg(rec.ETD1), clockToPg(rec.ETA2), clockToPg(rec.ETD),
		rec.GLCount, rec.GLName, rec.GLMobile,
	}
}

const microsPerMinute = int64(time.Minute / time.Microsecond)

func clockToPg(c domain.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Minutes) * microsPerMinute, Valid: c.Valid}
}

func clockFromPg(t pgtype.Time) domain.ClockTime {
	if !t.Valid {
		return domain.ClockTime{}
	}
	return domain.ClockTime{Minutes: int(t.Microseconds / microsPerMinute), Valid: true}
}
