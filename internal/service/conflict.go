package service

import (
	"fmt"
	"time"

	"github.com/msomdec/event-tracker/internal/domain"
)

// DefaultEventLength is the length assumed for an event without an explicit
// end time when checking for overlaps.
const DefaultEventLength = time.Hour

// Conflicts reports whether candidate overlaps existing on the same date.
//
// Dates are compared as strings. The candidate's interval ends at its own end
// time when it has one, otherwise one hour after its start. The existing
// event's interval always ends one hour after its start, whatever end time it
// has stored, so Conflicts(a, b) and Conflicts(b, a) can disagree.
// Intervals are half-open: an event ending at 10:00 does not clash with one
// starting at 10:00.
func Conflicts(candidate, existing domain.Event) (bool, error) {
	if candidate.Date != existing.Date {
		return false, nil
	}

	start, err := parseClock(candidate.StartTime)
	if err != nil {
		return false, err
	}
	end := start + DefaultEventLength
	if candidate.HasEnd() {
		if end, err = parseClock(candidate.EndTime); err != nil {
			return false, err
		}
	}

	otherStart, err := parseClock(existing.StartTime)
	if err != nil {
		return false, err
	}
	otherEnd := otherStart + DefaultEventLength

	return start < otherEnd && end > otherStart, nil
}

// parseClock parses a strict HH:mm time of day into an offset from midnight.
// Offsets past 24h are allowed for computed ends, so a 23:30 event runs to
// 00:30 of the next day instead of wrapping.
func parseClock(s string) (time.Duration, error) {
	if len(s) != len(domain.ClockLayout) {
		return 0, fmt.Errorf("%w: time %q must be HH:mm", domain.ErrInvalidInput, s)
	}
	t, err := time.Parse(domain.ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:mm", domain.ErrInvalidInput, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
