package letterdates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOfferWindow(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	window, err := BuildOfferWindow("01-09-2026", now)
	require.NoError(t, err)

	assert.Equal(t, "30-08-2026", window.Today)
	assert.Equal(t, "01-09-2026 to 11-09-2026", window.TrainingRange)
	assert.Equal(t, "12-09-2026", window.InternshipStart)
	assert.Equal(t, "12-03-2027", window.InternshipEnd)
}

func TestBuildOfferWindow_TrimsInput(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	window, err := BuildOfferWindow("  01-09-2026  ", now)
	require.NoError(t, err)
	assert.Equal(t, "01-09-2026 to 11-09-2026", window.TrainingRange)
}

func TestBuildOfferWindow_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "пустая строка", input: ""},
		{name: "не дата", input: "tomorrow"},
		{name: "американский формат", input: "09/01/2026"},
		{name: "несуществующий день", input: "31-02-2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildOfferWindow(tt.input, time.Now())
			require.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestBuildInternshipPeriod(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	from, to, err := BuildInternshipPeriod("July", now)
	require.NoError(t, err)
	assert.Equal(t, "10-07-2026", from)
	assert.Equal(t, "10-09-2026", to)
}

func TestBuildInternshipPeriod_NormalizesCase(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	from, _, err := BuildInternshipPeriod("  july ", now)
	require.NoError(t, err)
	assert.Equal(t, "10-07-2026", from)
}

func TestBuildInternshipPeriod_UnknownMonth(t *testing.T) {
	_, _, err := BuildInternshipPeriod("Julember", time.Now())
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestLongDate(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "March 05, 2026", LongDate(now))
}
