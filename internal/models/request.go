package models

import "time"

// BookingRequest carries the fields a requester supplies when asking
// for a slot. Validation tags cover presence only; interval ordering,
// past-start and conflict checks are the lifecycle manager's job and
// run in a fixed order after these.
type BookingRequest struct {
	RoomID    string    `json:"room_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Notes     string    `json:"notes"`
}
