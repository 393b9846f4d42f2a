package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentLayout(t *testing.T) {
	tests := map[string]string{
		"YYYY-MM-DD HH:mm":    "2006-01-02 15:04",
		"YYYY-MM-DD HH:mm:ss": "2006-01-02 15:04:05",
		"MMM D, YYYY h:mm A":  "Jan 2, 2006 3:04 PM",
		"dddd DD/MM/YY":       "Monday 02/01/06",
		"MMMM":                "January",
	}
	for in, want := range tests {
		assert.Equal(t, want, MomentLayout(in), in)
	}
}

func TestDateHelper_RoundTrip(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	h := NewDateHelper(time.FixedZone("server", 60*60))

	local, err := h.ParseLocalDate("2024-06-01 10:00", PickerFormat, ny)
	require.NoError(t, err)

	// 10:00 EDT is 14:00 UTC, 15:00 on a UTC+1 server
	assert.Equal(t, "2024-06-01 15:00:00", h.ConvertToServerStringTime(local))

	server, err := h.ParseServerTime("2024-06-01 15:00:00")
	require.NoError(t, err)
	assert.True(t, local.Equal(server))
	assert.Equal(t, "2024-06-01 10:00", h.GetLocalDate(server, ny, PickerFormat))
}

func TestDateHelper_Errors(t *testing.T) {
	h := NewDateHelper(nil)
	assert.Equal(t, time.UTC, h.Server)

	_, err := h.ParseLocalDate("not a date", PickerFormat, time.UTC)
	assert.Error(t, err)
	_, err = h.ParseServerTime("2024-06-01")
	assert.Error(t, err)
}
