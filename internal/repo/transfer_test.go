package repo_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/repo"
	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// transferFixture returns a simple-profile arrival. Callers can override
// individual fields after calling this function.
func transferFixture(day int) domain.TransferRecord {
	return domain.TransferRecord{
		Date:           time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC),
		Centre:         "University of Worcester",
		TransferType:   domain.Arrival,
		Agency:         "Direct enrolment",
		Nationality:    "Germany",
		GroupType:      domain.Group,
		Pax:            12,
		MeetAndGreet:   "Yes",
		CheckIn:        domain.CheckInNA,
		FlightNumber:   "LH 922",
		AirportStation: "Birmingham",
		Terminal:       "1",
		ETA:            domain.NewClockTime(0, 0),
		GLCount:        1,
		GLName:         "Anna Becker",
		GLMobile:       "+49 1701234567",
	}
}

func departureFixture(day int) domain.TransferRecord {
	r := transferFixture(day)
	r.TransferType = domain.Departure
	r.GroupType = domain.Individual
	r.Pax = 1
	r.CheckIn = "Yes"
	r.ETA = domain.ClockTime{}
	r.ETD = domain.NewClockTime(21, 5)
	return r
}

// runTransferRepoContract exercises the behaviour every TransferRepo backend
// shares. newRepo must return an empty store for each call.
func runTransferRepoContract(t *testing.T, newRepo func(t *testing.T) repo.TransferRepo) {
	ctx := context.Background()

	t.Run("LoadEmpty", func(t *testing.T) {
		got, err := newRepo(t).Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("AppendPreservesOrderAndValues", func(t *testing.T) {
		r := newRepo(t)
		first, second := departureFixture(9), transferFixture(3)
		require.NoError(t, r.Append(ctx, first))
		require.NoError(t, r.Append(ctx, second))

		got, err := r.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0])
		assert.Equal(t, second, got[1])
		assert.True(t, got[1].ETA.Valid, "midnight must be stored as a set time")
		assert.False(t, got[0].ETA.Valid)
	})

	t.Run("AppendKeepsDuplicates", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Append(ctx, transferFixture(1)))
		require.NoError(t, r.Append(ctx, transferFixture(1)))

		got, err := r.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("ImportDuplicateOfExistingRow", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Append(ctx, transferFixture(1)))
		require.NoError(t, r.Append(ctx, transferFixture(2)))

		res, err := r.ImportMerge(ctx, []domain.TransferRecord{transferFixture(2)})

		require.NoError(t, err)
		assert.Equal(t, domain.ImportResult{Received: 1, Added: 0, DuplicatesRemoved: 1, Total: 2}, res)
		got, err := r.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("ImportDedupesWholeCollection", func(t *testing.T) {
		r := newRepo(t)
		// Appends never dedupe, so the store can already hold repeats.
		require.NoError(t, r.Append(ctx, transferFixture(1)))
		require.NoError(t, r.Append(ctx, transferFixture(1)))

		res, err := r.ImportMerge(ctx, []domain.TransferRecord{departureFixture(4), departureFixture(4)})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 2, res.DuplicatesRemoved)
		got, err := r.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.TransferRecord{transferFixture(1), departureFixture(4)}, got)
	})

	t.Run("ImportTwiceIsIdempotent", func(t *testing.T) {
		r := newRepo(t)
		batch := []domain.TransferRecord{transferFixture(1), departureFixture(2)}
		_, err := r.ImportMerge(ctx, batch)
		require.NoError(t, err)

		res, err := r.ImportMerge(ctx, batch)

		require.NoError(t, err)
		assert.Zero(t, res.Added)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("ExportThenImportIntoFreshStore", func(t *testing.T) {
		src := newRepo(t)
		require.NoError(t, src.Append(ctx, transferFixture(1)))
		require.NoError(t, src.Append(ctx, departureFixture(2)))
		want, err := src.Load(ctx)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, src.ExportAll(ctx, &buf))
		decoded, err := tabular.Read(&buf, domain.ProfileSimple)
		require.NoError(t, err)

		dst := newRepo(t)
		res, err := dst.ImportMerge(ctx, decoded)

		require.NoError(t, err)
		assert.Equal(t, domain.ImportResult{Received: 2, Added: 2, Total: 2}, res)
		got, err := dst.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("ExportAll", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Append(ctx, transferFixture(5)))

		var buf bytes.Buffer
		require.NoError(t, r.ExportAll(ctx, &buf))

		got, err := tabular.Read(&buf, domain.ProfileSimple)
		require.NoError(t, err)
		assert.Equal(t, []domain.TransferRecord{transferFixture(5)}, got)
	})
}
