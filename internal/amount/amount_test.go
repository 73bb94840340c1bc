package amount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5 576 876,37", "5576876.37"},
		{"0,00", "0"},
		{"1 200.50", "1200.5"},
		{"-30 000,00", "-30000"},
		{"2 201 173,4", "2201173.4"},
		{"150 000,00 ₸", "150000"},
		{"450,00 KZT", "450"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParse_Garbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "—"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseOptional_EmptyIsZero(t *testing.T) {
	for _, in := range []string{"", "-", "—", "  "} {
		got, err := ParseOptional(in)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("02.01.2025 14:35:11")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("not a date")
	assert.Error(t, err)
}
