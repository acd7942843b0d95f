package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateFlexible(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *time.Time
	}{
		{
			name:     "plain date",
			input:    "2025-06-15",
			expected: ptrTime(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "RFC3339 with offset",
			input:    "2025-06-15T12:30:00+02:00",
			expected: ptrTime(time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name:     "datetime without timezone",
			input:    "2025-06-15 10:30:00",
			expected: ptrTime(time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "unparseable returns nil",
			input:    "not-a-date",
			expected: nil,
		},
		{
			name:     "leading/trailing whitespace stripped",
			input:    "  2025-06-15  ",
			expected: ptrTime(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDateFlexible(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Nil(t, formatDate(nil))
	assert.Equal(t, "2025-06-15", formatDate(ptrTime(time.Date(2025, 6, 15, 22, 0, 0, 0, time.UTC))))
}

func ptrTime(value time.Time) *time.Time {
	return &value
}
