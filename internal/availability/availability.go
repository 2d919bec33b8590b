// Package availability decides whether a candidate time slot conflicts
// with the bookings already known for a room. It is pure: callers fetch
// the working set (normally one day of bookings for one room) and no
// I/O happens here.
package availability

import (
	"time"

	"roomdesk/internal/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that merely touch at a boundary
// do not overlap, so back-to-back bookings are legal.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Conflicts reports whether the candidate interval collides with an
// existing booking. Rejected bookings never conflict: rejection frees
// the slot permanently.
func Conflicts(start, end time.Time, b *models.Booking) bool {
	if !b.Effective() {
		return false
	}
	return Overlaps(start, end, b.StartTime, b.EndTime)
}

// IsSlotAvailable reports whether [start, end) is free given the
// bookings already known for the room. Zero-length or inverted
// candidates are a caller contract violation; the lifecycle manager
// validates intervals before consulting this check.
func IsSlotAvailable(start, end time.Time, existing []*models.Booking) bool {
	for _, b := range existing {
		if Conflicts(start, end, b) {
			return false
		}
	}
	return true
}
