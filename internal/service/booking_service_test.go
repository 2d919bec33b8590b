package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) ListBookings(ctx context.Context, roomID string, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, roomID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) ListAllBookings(ctx context.Context, status string, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, status, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockStore) UpdateBookingStatus(ctx context.Context, id, status, adminNotes string) error {
	return m.Called(ctx, id, status, adminNotes).Error(0)
}
func (m *mockStore) DeleteBooking(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}
func (m *mockStore) ListRooms(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}
func (m *mockStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}
func (m *mockStore) UpsertRoom(ctx context.Context, room *models.Room) error {
	return m.Called(ctx, room).Error(0)
}
func (m *mockStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *mockStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}
func (m *mockStore) SetRoleByEmail(ctx context.Context, email, role string) error {
	return m.Called(ctx, email, role).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, booking *models.Booking, status, adminNotes string) error {
	return m.Called(ctx, booking, status, adminNotes).Error(0)
}

func newTestService(store domain.Store, queue domain.NotifyQueue) *BookingService {
	logger := zerolog.Nop()
	return NewBookingService(store, nil, queue, 90, &logger)
}

var (
	user  = models.Actor{ID: "user-1", Role: models.RoleUser}
	admin = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

func futureRequest() models.BookingRequest {
	start := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Minute)
	return models.BookingRequest{
		RoomID:    "room-1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestCreate_Success(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)
	req := futureRequest()

	store.On("GetRoom", mock.Anything, "room-1").Return(&models.Room{ID: "room-1", Name: "Room One"}, nil)
	store.On("ListBookings", mock.Anything, "room-1", mock.Anything, mock.Anything).Return([]*models.Booking{}, nil)
	store.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.Create(context.Background(), user, req)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "user-1", booking.UserID)
	assert.Equal(t, "Room One", booking.RoomName)
	store.AssertExpectations(t)
}

func TestCreate_AnonymousRejected(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	_, err := svc.Create(context.Background(), models.Actor{}, futureRequest())
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	store.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
}

func TestCreate_ValidationOrder(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)
	now := time.Now().UTC()

	tests := []struct {
		name  string
		req   models.BookingRequest
		field string
	}{
		{
			name:  "missing room id",
			req:   models.BookingRequest{StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)},
			field: "RoomID",
		},
		{
			name:  "missing times",
			req:   models.BookingRequest{RoomID: "room-1"},
			field: "StartTime",
		},
		{
			name:  "inverted interval",
			req:   models.BookingRequest{RoomID: "room-1", StartTime: now.Add(2 * time.Hour), EndTime: now.Add(time.Hour)},
			field: "end_time",
		},
		{
			name:  "zero length interval",
			req:   models.BookingRequest{RoomID: "room-1", StartTime: now.Add(time.Hour), EndTime: now.Add(time.Hour)},
			field: "end_time",
		},
		{
			// A past interval that is also inverted reports the ordering
			// problem first.
			name:  "past start",
			req:   models.BookingRequest{RoomID: "room-1", StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)},
			field: "end_time",
		},
		{
			name:  "past start with valid ordering",
			req:   models.BookingRequest{RoomID: "room-1", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)},
			field: "start_time",
		},
		{
			name:  "beyond booking horizon",
			req:   models.BookingRequest{RoomID: "room-1", StartTime: now.AddDate(0, 0, 91), EndTime: now.AddDate(0, 0, 91).Add(time.Hour)},
			field: "start_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user, tt.req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	// No validation failure ever reaches the store.
	store.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
}

func TestCreate_UnknownRoom(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	store.On("GetRoom", mock.Anything, "room-1").Return(nil, domain.ErrRoomNotFound)

	_, err := svc.Create(context.Background(), user, futureRequest())
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestCreate_SlotConflict(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)
	req := futureRequest()

	existing := &models.Booking{
		ID:        "other",
		RoomID:    "room-1",
		Status:    models.StatusApproved,
		StartTime: req.StartTime.Add(-30 * time.Minute),
		EndTime:   req.StartTime.Add(30 * time.Minute),
	}

	store.On("GetRoom", mock.Anything, "room-1").Return(&models.Room{ID: "room-1", Name: "Room One"}, nil)
	store.On("ListBookings", mock.Anything, "room-1", mock.Anything, mock.Anything).Return([]*models.Booking{existing}, nil)

	_, err := svc.Create(context.Background(), user, req)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	store.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
}

func TestCreate_RejectedBookingDoesNotBlock(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)
	req := futureRequest()

	rejected := &models.Booking{
		ID:        "other",
		RoomID:    "room-1",
		Status:    models.StatusRejected,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	store.On("GetRoom", mock.Anything, "room-1").Return(&models.Room{ID: "room-1", Name: "Room One"}, nil)
	store.On("ListBookings", mock.Anything, "room-1", mock.Anything, mock.Anything).Return([]*models.Booking{rejected}, nil)
	store.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), user, req)
	assert.NoError(t, err)
}

func TestCreate_InsertRace(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)
	req := futureRequest()

	// The pre-check passes but a concurrent writer wins inside the
	// insert transaction.
	store.On("GetRoom", mock.Anything, "room-1").Return(&models.Room{ID: "room-1", Name: "Room One"}, nil)
	store.On("ListBookings", mock.Anything, "room-1", mock.Anything, mock.Anything).Return([]*models.Booking{}, nil)
	store.On("InsertBooking", mock.Anything, mock.Anything).Return(domain.ErrSlotUnavailable)

	_, err := svc.Create(context.Background(), user, req)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestApprove_AdminOnly(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	_, err := svc.Approve(context.Background(), user, "b1", "")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	store.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_Success(t *testing.T) {
	store := &mockStore{}
	queue := &mockQueue{}
	svc := newTestService(store, queue)

	approved := &models.Booking{ID: "b1", Status: models.StatusApproved, AdminNotes: "ok"}
	store.On("UpdateBookingStatus", mock.Anything, "b1", models.StatusApproved, "ok").Return(nil)
	store.On("GetBooking", mock.Anything, "b1").Return(approved, nil)
	queue.On("Enqueue", mock.Anything, approved, models.StatusApproved, "ok").Return(nil)

	booking, err := svc.Approve(context.Background(), admin, "b1", "ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, booking.Status)
	store.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestReject_Success(t *testing.T) {
	store := &mockStore{}
	queue := &mockQueue{}
	svc := newTestService(store, queue)

	rejected := &models.Booking{ID: "b1", Status: models.StatusRejected, AdminNotes: "double booked"}
	store.On("UpdateBookingStatus", mock.Anything, "b1", models.StatusRejected, "double booked").Return(nil)
	store.On("GetBooking", mock.Anything, "b1").Return(rejected, nil)
	queue.On("Enqueue", mock.Anything, rejected, models.StatusRejected, "double booked").Return(nil)

	booking, err := svc.Reject(context.Background(), admin, "b1", "double booked")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, booking.Status)
}

func TestApprove_NotPending(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	store.On("UpdateBookingStatus", mock.Anything, "b1", models.StatusApproved, "").Return(domain.ErrNotPending)

	_, err := svc.Approve(context.Background(), admin, "b1", "")
	assert.ErrorIs(t, err, domain.ErrNotPending)
}

func TestApprove_EnqueueFailureDoesNotFailTransition(t *testing.T) {
	store := &mockStore{}
	queue := &mockQueue{}
	svc := newTestService(store, queue)

	approved := &models.Booking{ID: "b1", Status: models.StatusApproved}
	store.On("UpdateBookingStatus", mock.Anything, "b1", models.StatusApproved, "").Return(nil)
	store.On("GetBooking", mock.Anything, "b1").Return(approved, nil)
	queue.On("Enqueue", mock.Anything, approved, models.StatusApproved, "").Return(errors.New("queue full"))

	booking, err := svc.Approve(context.Background(), admin, "b1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, booking.Status)
}

func TestApprove_ReadBackFailureStillSucceeds(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	store.On("UpdateBookingStatus", mock.Anything, "b1", models.StatusApproved, "ok").Return(nil)
	store.On("GetBooking", mock.Anything, "b1").Return(nil, errors.New("db gone"))

	booking, err := svc.Approve(context.Background(), admin, "b1", "ok")
	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)
	assert.Equal(t, models.StatusApproved, booking.Status)
}

func TestCancel_OwnerWhilePending(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	pending := &models.Booking{
		ID:        "b1",
		UserID:    "user-1",
		Status:    models.StatusPending,
		StartTime: time.Now().UTC().Add(time.Hour),
	}
	store.On("GetBooking", mock.Anything, "b1").Return(pending, nil)
	store.On("DeleteBooking", mock.Anything, "b1", "user-1").Return(nil)

	assert.NoError(t, svc.Cancel(context.Background(), user, "b1"))
	store.AssertExpectations(t)
}

func TestCancel_Guards(t *testing.T) {
	futureStart := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name    string
		booking *models.Booking
		actor   models.Actor
		wantErr error
	}{
		{
			name:    "not the owner",
			booking: &models.Booking{ID: "b1", UserID: "someone-else", Status: models.StatusPending, StartTime: futureStart},
			actor:   user,
			wantErr: domain.ErrNotOwner,
		},
		{
			// Admins have no shortcut here; cancellation is owner-only.
			name:    "admin is not the owner either",
			booking: &models.Booking{ID: "b1", UserID: "user-1", Status: models.StatusPending, StartTime: futureStart},
			actor:   admin,
			wantErr: domain.ErrNotOwner,
		},
		{
			name:    "already approved",
			booking: &models.Booking{ID: "b1", UserID: "user-1", Status: models.StatusApproved, StartTime: futureStart},
			actor:   user,
			wantErr: domain.ErrNotPending,
		},
		{
			name:    "already started",
			booking: &models.Booking{ID: "b1", UserID: "user-1", Status: models.StatusPending, StartTime: time.Now().UTC().Add(-time.Minute)},
			actor:   user,
			wantErr: domain.ErrAlreadyStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc := newTestService(store, nil)
			store.On("GetBooking", mock.Anything, "b1").Return(tt.booking, nil)

			err := svc.Cancel(context.Background(), tt.actor, "b1")
			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckSlot(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	start := time.Now().UTC().Add(2 * time.Hour)
	end := start.Add(time.Hour)

	existing := &models.Booking{
		ID:        "other",
		RoomID:    "room-1",
		Status:    models.StatusPending,
		StartTime: start,
		EndTime:   end,
	}

	store.On("GetRoom", mock.Anything, "room-1").Return(&models.Room{ID: "room-1"}, nil)
	store.On("ListBookings", mock.Anything, "room-1", mock.Anything, mock.Anything).Return([]*models.Booking{existing}, nil)

	available, err := svc.CheckSlot(context.Background(), "room-1", start, end)
	require.NoError(t, err)
	assert.False(t, available)

	// The slot right after is free; touching boundaries do not collide.
	available, err = svc.CheckSlot(context.Background(), "room-1", end, end.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCheckSlot_InvertedInterval(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	start := time.Now().UTC().Add(2 * time.Hour)
	_, err := svc.CheckSlot(context.Background(), "room-1", start, start.Add(-time.Hour))
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListForUser_StatusFilter(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	store.On("ListBookingsByUser", mock.Anything, "user-1").Return([]*models.Booking{
		{ID: "b1", Status: models.StatusPending},
		{ID: "b2", Status: models.StatusApproved},
		{ID: "b3", Status: models.StatusPending},
	}, nil)

	got, err := svc.ListForUser(context.Background(), "user-1", models.StatusPending)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "b3", got[1].ID)
}

func TestListAll_AdminOnly(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	_, err := svc.ListAll(context.Background(), user, "", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	store.AssertNotCalled(t, "ListAllBookings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
