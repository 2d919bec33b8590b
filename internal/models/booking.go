package models

import "time"

type Booking struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"` // pending, approved, rejected
	Notes      string    `json:"notes,omitempty"`
	AdminNotes string    `json:"admin_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Duration is always derived from the interval; it is never stored
// separately so it cannot drift from start/end.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Effective reports whether the booking still occupies its slot.
// Rejected bookings free the slot permanently.
func (b *Booking) Effective() bool {
	return b.Status == StatusPending || b.Status == StatusApproved
}
