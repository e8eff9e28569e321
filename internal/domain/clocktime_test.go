package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transfer-tracker/internal/domain"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in    string
		want  domain.ClockTime
		isErr bool
	}{
		{in: "", want: domain.ClockTime{}},
		{in: "   ", want: domain.ClockTime{}},
		{in: "00:00", want: domain.ClockTime{Minutes: 0, Valid: true}},
		{in: "09:05", want: domain.NewClockTime(9, 5)},
		{in: "23:59:30", want: domain.NewClockTime(23, 59)},
		{in: "24:00", isErr: true},
		{in: "noon", isErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := domain.ParseClockTime(tc.in)
			if tc.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClockTime_MidnightIsSet(t *testing.T) {
	midnight := domain.NewClockTime(0, 0)

	assert.True(t, midnight.Valid)
	assert.Equal(t, "00:00", midnight.String())
	assert.Equal(t, "", domain.ClockTime{}.String())
}
