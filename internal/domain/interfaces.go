package domain

import (
	"context"
	"time"

	"roomdesk/internal/models"
)

// Store is the persistence surface the core consumes. The production
// implementation is SQLite; row-level scoping (owner-only deletes,
// pending-only transitions) is enforced in the queries themselves.
type Store interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, roomID string, from, to time.Time) ([]*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error)
	ListAllBookings(ctx context.Context, status string, from, to time.Time) ([]*models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id, status, adminNotes string) error
	DeleteBooking(ctx context.Context, id, ownerID string) error

	ListRooms(ctx context.Context) ([]*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	UpsertRoom(ctx context.Context, room *models.Room) error

	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	SetRoleByEmail(ctx context.Context, email, role string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers the post-transition notification. Delivery failure
// must never unwind the committed transition; callers log the error and
// move on.
type Notifier interface {
	Notify(ctx context.Context, booking *models.Booking, status, adminNotes string) error
}

// NotifyQueue accepts notification work for asynchronous dispatch.
type NotifyQueue interface {
	Enqueue(ctx context.Context, booking *models.Booking, status, adminNotes string) error
}

type BookingService interface {
	Create(ctx context.Context, actor models.Actor, req models.BookingRequest) (*models.Booking, error)
	Approve(ctx context.Context, actor models.Actor, bookingID, adminNotes string) (*models.Booking, error)
	Reject(ctx context.Context, actor models.Actor, bookingID, adminNotes string) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, bookingID string) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListRoomDay(ctx context.Context, roomID string, day time.Time) ([]*models.Booking, error)
	CheckSlot(ctx context.Context, roomID string, start, end time.Time) (bool, error)
	ListForUser(ctx context.Context, userID, status string) ([]*models.Booking, error)
	ListAll(ctx context.Context, actor models.Actor, status string, from, to time.Time) ([]*models.Booking, error)
}

type RoomService interface {
	ListRooms(ctx context.Context) ([]*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	SeedRooms(ctx context.Context, rooms []models.Room) error
}

type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ResolveActor(ctx context.Context, userID string) (models.Actor, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	PromoteAdmins(ctx context.Context, emails []string) error
}
