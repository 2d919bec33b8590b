package service

import (
	"context"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// RoomService exposes the read-only room surface. Rooms are managed
// outside this core; the service only reads them and seeds the table
// from config at startup.
type RoomService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewRoomService(store domain.Store, logger *zerolog.Logger) *RoomService {
	return &RoomService{store: store, logger: logger}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	return s.store.ListRooms(ctx)
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.store.GetRoom(ctx, id)
}

// SeedRooms upserts the configured rooms so the schedule surface is
// usable immediately after boot. Existing rows keep their identity.
func (s *RoomService) SeedRooms(ctx context.Context, rooms []models.Room) error {
	for i := range rooms {
		room := rooms[i]
		if err := s.store.UpsertRoom(ctx, &room); err != nil {
			return err
		}
		s.logger.Debug().Str("room_id", room.ID).Str("name", room.Name).Msg("room seeded")
	}
	return nil
}
