package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateID(t *testing.T) {
	assert.Equal(t, int32(20240301), DateID(time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, SentinelDateID, DateID(SentinelDate))
	assert.Equal(t, MustParseDate("2024-12-31"), DateFromID(20241231))
}

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T08:30:00Z", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"2024-03-01 08:30:00", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"2024-03-01T08:30:00.250", time.Date(2024, 3, 1, 8, 30, 0, 250_000_000, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISOTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
		})
	}

	_, err := ParseISOTime("")
	assert.Error(t, err)
	_, err = ParseISOTime("last tuesday")
	assert.Error(t, err)
}
