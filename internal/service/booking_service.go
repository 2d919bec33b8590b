package service

import (
	"context"
	"errors"
	"time"

	"roomdesk/internal/availability"
	"roomdesk/internal/domain"
	"roomdesk/internal/events"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService owns the booking state machine: pending on create,
// exactly one admin transition to approved or rejected, owner-initiated
// cancellation while still pending. Every operation takes an explicit
// Actor; nothing is read from ambient auth state.
type BookingService struct {
	store          domain.Store
	eventBus       domain.EventPublisher
	notifyQueue    domain.NotifyQueue
	validate       *validator.Validate
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, notifyQueue domain.NotifyQueue, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	return &BookingService{
		store:          store,
		eventBus:       eventBus,
		notifyQueue:    notifyQueue,
		validate:       validator.New(),
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

// validateRequest runs the create-time checks in their fixed order,
// short-circuiting on the first failure: required fields, interval
// ordering, past start, booking horizon. Availability comes after, once
// the working set is loaded.
func (s *BookingService) validateRequest(req *models.BookingRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return domain.NewValidationError(invalid[0].Field(), "is required")
		}
		return domain.NewValidationError("request", "is malformed")
	}

	req.StartTime = req.StartTime.UTC()
	req.EndTime = req.EndTime.UTC()

	if !req.EndTime.After(req.StartTime) {
		return domain.NewValidationError("end_time", "must be after start_time")
	}

	now := time.Now().UTC()
	if req.StartTime.Before(now) {
		return domain.NewValidationError("start_time", "must not be in the past")
	}
	if req.StartTime.After(now.AddDate(0, 0, s.maxBookingDays)) {
		return domain.NewValidationError("start_time", "is too far in advance")
	}

	return nil
}

func (s *BookingService) Create(ctx context.Context, actor models.Actor, req models.BookingRequest) (*models.Booking, error) {
	if actor.ID == "" {
		return nil, domain.ErrNotAuthorized
	}

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	room, err := s.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	// Pure pre-check over the day's working set. The insert re-checks
	// inside its transaction, so a losing racer still gets a conflict.
	existing, err := s.workingSet(ctx, req.RoomID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !availability.IsSlotAvailable(req.StartTime, req.EndTime, existing) {
		metrics.IncConflict()
		return nil, domain.ErrSlotUnavailable
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		RoomName:  room.Name,
		UserID:    actor.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.StatusPending,
		Notes:     req.Notes,
	}

	if err := s.store.InsertBooking(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			metrics.IncConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, actor)

	return booking, nil
}

func (s *BookingService) Approve(ctx context.Context, actor models.Actor, bookingID, adminNotes string) (*models.Booking, error) {
	return s.transition(ctx, actor, bookingID, models.StatusApproved, adminNotes)
}

func (s *BookingService) Reject(ctx context.Context, actor models.Actor, bookingID, adminNotes string) (*models.Booking, error) {
	return s.transition(ctx, actor, bookingID, models.StatusRejected, adminNotes)
}

// transition performs the single admin-gated state change a booking is
// allowed. The conditional update in the store guarantees a booking
// that already left pending is reported, never silently re-written.
func (s *BookingService) transition(ctx context.Context, actor models.Actor, bookingID, status, adminNotes string) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, status, adminNotes); err != nil {
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		// The transition is committed; surfacing the read error would
		// mislead the caller into thinking it failed.
		s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("read back after transition failed")
		booking = &models.Booking{ID: bookingID, Status: status, AdminNotes: adminNotes}
	}

	metrics.IncTransition(status)
	s.publishEvent(eventForStatus(status), booking, actor)

	// Fire-and-forget: a delivery problem is logged, never unwound into
	// the already-committed transition.
	if s.notifyQueue != nil {
		if err := s.notifyQueue.Enqueue(ctx, booking, status, adminNotes); err != nil {
			metrics.IncNotifyFailure()
			s.logger.Error().Err(err).Str("booking_id", bookingID).Str("status", status).Msg("notification enqueue error")
		}
	}

	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, actor models.Actor, bookingID string) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.UserID != actor.ID {
		return domain.ErrNotOwner
	}
	if booking.Status != models.StatusPending {
		return domain.ErrNotPending
	}
	if !booking.StartTime.After(time.Now().UTC()) {
		return domain.ErrAlreadyStarted
	}

	if err := s.store.DeleteBooking(ctx, bookingID, actor.ID); err != nil {
		return err
	}

	metrics.IncCancellation()
	// No notification for owner-initiated cancellation, only the
	// refresh event.
	s.publishEvent(events.EventBookingCancelled, booking, actor)

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListRoomDay returns the bookings touching the given UTC day for a
// room, the working set a client shows on the schedule screen.
func (s *BookingService) ListRoomDay(ctx context.Context, roomID string, day time.Time) ([]*models.Booking, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	return s.store.ListBookings(ctx, roomID, from, to)
}

// CheckSlot answers the live availability query without mutating
// anything. Inverted intervals are a validation failure here too.
func (s *BookingService) CheckSlot(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return false, domain.NewValidationError("end_time", "must be after start_time")
	}

	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return false, err
	}

	existing, err := s.workingSet(ctx, roomID, start, end)
	if err != nil {
		return false, err
	}
	return availability.IsSlotAvailable(start, end, existing), nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID, status string) ([]*models.Booking, error) {
	bookings, err := s.store.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return bookings, nil
	}

	filtered := bookings[:0]
	for _, b := range bookings {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *BookingService) ListAll(ctx context.Context, actor models.Actor, status string, from, to time.Time) ([]*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}
	return s.store.ListAllBookings(ctx, status, from, to)
}

// workingSet loads every booking for the room over the UTC days the
// candidate interval touches.
func (s *BookingService) workingSet(ctx context.Context, roomID string, start, end time.Time) ([]*models.Booking, error) {
	from := start.Truncate(24 * time.Hour)
	to := end.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return s.store.ListBookings(ctx, roomID, from, to)
}

func eventForStatus(status string) string {
	if status == models.StatusApproved {
		return events.EventBookingApproved
	}
	return events.EventBookingRejected
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actor models.Actor) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		RoomName:   booking.RoomName,
		UserID:     booking.UserID,
		UserName:   booking.UserName,
		Status:     booking.Status,
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		AdminNotes: booking.AdminNotes,
		ChangedBy:  actor.ID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
