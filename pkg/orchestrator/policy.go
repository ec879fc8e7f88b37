package orchestrator

import (
	"strings"
	"time"
)

const lastRotatedPrefix = "Last Rotated: "

// ShouldRotateByPolicy inspects notes for a "Last Rotated: <RFC3339>" line
// and reports whether rotationDays have elapsed since. Notes without the
// marker, or with an unparseable date, rotate (fail safe).
func ShouldRotateByPolicy(notes string, rotationDays int) bool {
	for _, line := range strings.Split(notes, "\n") {
		if !strings.HasPrefix(line, lastRotatedPrefix) {
			continue
		}
		dateStr := strings.TrimSpace(strings.TrimPrefix(line, lastRotatedPrefix))
		lastRotated, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return true
		}
		age := time.Since(lastRotated)
		return age >= time.Duration(rotationDays)*24*time.Hour
	}
	return true
}

// StampLastRotated replaces (or prepends) the "Last Rotated:" line in notes
// with the given timestamp.
func StampLastRotated(notes string, now time.Time) string {
	var rest []string
	for _, line := range strings.Split(notes, "\n") {
		if strings.HasPrefix(line, lastRotatedPrefix) {
			continue
		}
		rest = append(rest, line)
	}
	stamped := lastRotatedPrefix + now.Format(time.RFC3339)
	return stamped + "\n" + strings.Join(rest, "\n")
}
