package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRotateByPolicy_NoMarkerRotates(t *testing.T) {
	assert.True(t, ShouldRotateByPolicy("", 30))
}

func TestShouldRotateByPolicy_OldDateRotates(t *testing.T) {
	old := "Last Rotated: 2020-01-01T00:00:00Z\nsome other notes"
	assert.True(t, ShouldRotateByPolicy(old, 30))
}

func TestShouldRotateByPolicy_RecentDateSkips(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	notes := "Last Rotated: " + now + "\nsome other notes"
	assert.False(t, ShouldRotateByPolicy(notes, 30))
}

func TestShouldRotateByPolicy_UnparseableDateRotates(t *testing.T) {
	assert.True(t, ShouldRotateByPolicy("Last Rotated: not-a-date\nnotes", 30))
}

func TestStampLastRotated_ReplacesExistingMarker(t *testing.T) {
	notes := "Last Rotated: 2020-01-01T00:00:00Z\nkeep this line"
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stamped := StampLastRotated(notes, now)
	assert.Contains(t, stamped, "Last Rotated: 2026-01-01T00:00:00Z")
	assert.Contains(t, stamped, "keep this line")
	assert.NotContains(t, stamped, "2020-01-01")
}

func TestStampLastRotated_PrependsWhenAbsent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stamped := StampLastRotated("pre-existing notes", now)
	assert.Contains(t, stamped, "Last Rotated: 2026-01-01T00:00:00Z")
	assert.Contains(t, stamped, "pre-existing notes")
}
