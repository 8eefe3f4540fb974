package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-sync/internal/testutil"
)

func TestQueryService_TargetDay(t *testing.T) {
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on the 11th is still the 10th in New York.
	now := time.Date(2025, 3, 11, 2, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		offset   int
		location *time.Location
		want     string
	}{
		{"yesterday in UTC", 1, time.UTC, "2025-03-10"},
		{"today in UTC", 0, time.UTC, "2025-03-11"},
		{"yesterday in New York", 1, nyc, "2025-03-09"},
		{"week ago", 7, time.UTC, "2025-03-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQueryService(nil, tt.offset, tt.location, testutil.DiscardLogger())
			s.now = func() time.Time { return now }

			day := s.TargetDay()
			assert.Equal(t, tt.want, day.Format("2006-01-02"))
			assert.Equal(t, tt.location, day.Location())
		})
	}
}

func TestNewQueryService_DefaultsLocation(t *testing.T) {
	s := NewQueryService(nil, 1, nil, testutil.DiscardLogger())
	assert.Equal(t, time.Local, s.location)
}
