package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		line string
		want time.Duration
	}{
		{
			"typical ticket",
			"User alice ticket expires in 11 hours 38 minutes.",
			11*time.Hour + 38*time.Minute,
		},
		{
			"two and a half hours",
			"User bob ticket expires in 2 hours 30 minutes.",
			2*time.Hour + 30*time.Minute,
		},
		{
			"zero hours",
			"User carol ticket expires in 0 hours 5 minutes.",
			5 * time.Minute,
		},
		{
			"zero remaining",
			"User dave ticket expires in 0 hours 0 minutes.",
			0,
		},
		{
			"large lifetime",
			"User svc ticket expires in 8760 hours 0 minutes.",
			8760 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpiry(tt.line, now)
			require.NoError(t, err)
			assert.Equal(t, now.Add(tt.want), got)
		})
	}
}

func TestParseExpiryMillisecondArithmetic(t *testing.T) {
	// 2 hours 30 minutes is exactly 9,000,000 ms past now.
	now := time.Now()
	got, err := ParseExpiry("ticket expires in 2 hours 30 minutes.", now)
	require.NoError(t, err)
	assert.Equal(t, int64(9000000), got.Sub(now).Milliseconds())
}

func TestParseExpiryMalformed(t *testing.T) {
	now := time.Now()

	lines := []string{
		"malformed",
		"",
		"ticket expires in two hours 30 minutes.",
		"ticket expires in 2 hours 30 minutes",           // missing period
		"ticket expires in 2 hours 30 minutes. (approx)", // trailing garbage
		"ticket expires in 2 hours.",
		"expires in 5 minutes.",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := ParseExpiry(line, now)
			require.Error(t, err)

			var perr *ExpiryParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, line, perr.Line)
		})
	}
}

func TestParseExpiryOverflowDigits(t *testing.T) {
	// A digit run too large for an int is a parse failure, not a
	// bogus expiry.
	_, err := ParseExpiry("ticket expires in 99999999999999999999 hours 0 minutes.", time.Now())
	var perr *ExpiryParseError
	require.True(t, errors.As(err, &perr))
	assert.Error(t, perr.Err)
}
