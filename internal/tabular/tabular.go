// Package tabular encodes and decodes transfer records in the row/column
// layout used for the persisted file, for imports and for exports.
// The column set and order come from domain.Schema; one row per record.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/transfer-tracker/internal/domain"
)

// ContentType is the MIME type of the tabular layout.
const ContentType = "text/csv"

// ExportFilename is the stable download name of a full export.
const ExportFilename = "all_transfers.csv"

// Header returns the column headers of profile p.
func Header(p domain.Profile) []string {
	return domain.NewSchema(p).Columns()
}

// Encode returns the row of r under profile p, in Header order.
func Encode(p domain.Profile, r domain.TransferRecord) []string {
	cols := Header(p)
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = encodeColumn(col, r)
	}
	return row
}

func encodeColumn(col string, r domain.TransferRecord) string {
	switch col {
	case "Date":
		return r.Date.Format(domain.DateLayout)
	case "Day":
		return r.DayOfWeek()
	case "Centre":
		return r.Centre
	case "Transfer Type":
		return string(r.TransferType)
	case "Agency":
		return r.Agency
	case "Nationality":
		return r.Nationality
	case "Grp/Ind":
		return string(r.GroupType)
	case "Pax":
		return strconv.Itoa(r.Pax)
	case "Meet & Greet":
		return r.MeetAndGreet
	case "Check In":
		return r.CheckIn
	case "Flight / Train Number":
		return r.FlightNumber
	case "Airport / Train Station":
		return r.AirportStation
	case "Pick Up":
		return r.PickUp
	case "Drop Off":
		return r.DropOff
	case "Terminal":
		return r.Terminal
	case "ETA":
		return r.ETA.String()
	case "ETA 1":
		return r.ETA1.String()
	case "ETD 1":
		return r.ETD1.String()
	case "ETA 2":
		return r.ETA2.String()
	case "ETD":
		return r.ETD.String()
	case "GL Nr":
		return strconv.Itoa(r.GLCount)
	case "Main GL / Ind Name":
		return r.GLName
	case "GL / Ind Mobile Nr":
		return r.GLMobile
	}
	return ""
}

// Write encodes a header row followed by one row per record.
func Write(w io.Writer, p domain.Profile, records []domain.TransferRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(p)); err != nil {
		return fmt.Errorf("tabular.Write: header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Encode(p, r)); err != nil {
			return fmt.Errorf("tabular.Write: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("tabular.Write: flush: %w", err)
	}
	return nil
}

// Read decodes a header row and the records that follow it.
// The header must name exactly the columns of profile p, in any order.
// Returns domain.ErrEmptyInput when there is no header,
// domain.ErrSchemaMismatch when the column set differs and
// domain.ErrMalformedRow when a value cannot be decoded.
func Read(r io.Reader, p domain.Profile) ([]domain.TransferRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("tabular.Read: header: %w: %w", domain.ErrMalformedRow, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	index, err := columnIndex(header, Header(p))
	if err != nil {
		return nil, err
	}

	records := []domain.TransferRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular.Read: %w: %w", domain.ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := decodeRow(p, index, row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// columnIndex maps each expected column to its position in header.
func columnIndex(header, want []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	var unexpected []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		if !slices.Contains(want, h) {
			unexpected = append(unexpected, h)
			continue
		}
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrSchemaMismatch, h)
		}
		index[h] = i
	}
	var missing []string
	for _, w := range want {
		if _, ok := index[w]; !ok {
			missing = append(missing, w)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return index, nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing columns: "+quoteJoin(missing))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+quoteJoin(unexpected))
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSchemaMismatch, strings.Join(parts, "; "))
}

func quoteJoin(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = strconv.Quote(n)
	}
	return strings.Join(q, ", ")
}

// rowError builds an ErrMalformedRow for one cell.
func rowError(line int, col string, err error) error {
	return fmt.Errorf("%w: line %d, column %q: %v", domain.ErrMalformedRow, line, col, err)
}

type timeColumn struct {
	col string
	dst *domain.ClockTime
}

func decodeRow(p domain.Profile, index map[string]int, row []string, line int) (domain.TransferRecord, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		r   domain.TransferRecord
		err error
	)

	if r.Date, err = time.Parse(domain.DateLayout, get("Date")); err != nil {
		return r, rowError(line, "Date", err)
	}
	var ok bool
	if r.TransferType, ok = domain.ParseTransferType(get("Transfer Type")); !ok {
		return r, rowError(line, "Transfer Type", fmt.Errorf("unknown value %q", get("Transfer Type")))
	}
	if r.GroupType, ok = domain.ParseGroupType(get("Grp/Ind")); !ok {
		return r, rowError(line, "Grp/Ind", fmt.Errorf("unknown value %q", get("Grp/Ind")))
	}
	if r.Pax, err = parseCount(get("Pax")); err != nil {
		return r, rowError(line, "Pax", err)
	}
	if r.Pax < 1 {
		return r, rowError(line, "Pax", fmt.Errorf("must be at least 1, got %d", r.Pax))
	}
	if r.GLCount, err = parseCount(get("GL Nr")); err != nil {
		return r, rowError(line, "GL Nr", err)
	}
	if r.MeetAndGreet, err = oneOf(get("Meet & Greet"), domain.YesNo...); err != nil {
		return r, rowError(line, "Meet & Greet", err)
	}
	// Spreadsheet tools commonly read "N/A" as missing and write it back blank.
	checkIn := get("Check In")
	if checkIn == "" {
		checkIn = domain.CheckInNA
	}
	if r.CheckIn, err = oneOf(checkIn, "Yes", "No", domain.CheckInNA); err != nil {
		return r, rowError(line, "Check In", err)
	}

	r.Centre = get("Centre")
	r.Agency = get("Agency")
	r.Nationality = get("Nationality")
	r.FlightNumber = get("Flight / Train Number")
	r.Terminal = get("Terminal")
	r.GLName = get("Main GL / Ind Name")
	r.GLMobile = get("GL / Ind Mobile Nr")

	times := []timeColumn{{"ETD", &r.ETD}}
	if p == domain.ProfileExtended {
		r.PickUp = get("Pick Up")
		r.DropOff = get("Drop Off")
		times = append(times, timeColumn{"ETA 1", &r.ETA1}, timeColumn{"ETD 1", &r.ETD1}, timeColumn{"ETA 2", &r.ETA2})
	} else {
		r.AirportStation = get("Airport / Train Station")
		times = append(times, timeColumn{"ETA", &r.ETA})
	}
	for _, t := range times {
		if *t.dst, err = domain.ParseClockTime(get(t.col)); err != nil {
			return r, rowError(line, t.col, err)
		}
	}
	return r, nil
}

// maxCount bounds count columns to what every store backend can hold
// (Postgres INTEGER).
const maxCount = math.MaxInt32

// parseCount parses a non-negative integer no larger than maxCount. Integral
// floats such as "3.0" are accepted because spreadsheet tools write counts
// that way.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("value required")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		if n > maxCount {
			return 0, fmt.Errorf("count %d out of range", n)
		}
		return int(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if f > maxCount {
		return 0, fmt.Errorf("count %q out of range", s)
	}
	return int(f), nil
}

func oneOf(v string, allowed ...string) (string, error) {
	if slices.Contains(allowed, v) {
		return v, nil
	}
	return "", fmt.Errorf("unknown value %q", v)
}

// Key returns a string identifying r's full row under profile p. Two
// records with equal keys are identical in every column.
func Key(p domain.Profile, r domain.TransferRecord) string {
	return strings.Join(Encode(p, r), "\x1f")
}

// dedupe drops every record whose full row equals an earlier one, keeping
// first occurrences in their original order. It also counts how many kept
// records sit at or after index from.
func dedupe(p domain.Profile, records []domain.TransferRecord, from int) ([]domain.TransferRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.TransferRecord, 0, len(records))
	tail := 0
	for i, r := range records {
		k := Key(p, r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
		if i >= from {
			tail++
		}
	}
	return out, tail
}

// Merge unions incoming onto existing and dedupes the result. Added counts
// the incoming rows that survived.
func Merge(p domain.Profile, existing, incoming []domain.TransferRecord) ([]domain.TransferRecord, domain.ImportResult) {
	all := make([]domain.TransferRecord, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)
	merged, added := dedupe(p, all, len(existing))
	return merged, domain.ImportResult{
		Received:          len(incoming),
		Added:             added,
		DuplicatesRemoved: len(all) - len(merged),
		Total:             len(merged),
	}
}
