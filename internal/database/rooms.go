package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"
)

func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT id, name, COALESCE(description, ''), capacity, created_at, updated_at
              FROM rooms ORDER BY name ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		r := &models.Room{}
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rooms: %w", err)
	}
	return rooms, nil
}

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	query := `SELECT id, name, COALESCE(description, ''), capacity, created_at, updated_at
              FROM rooms WHERE id = ?`
	r := &models.Room{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Name, &r.Description, &r.Capacity, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return r, nil
}

func (db *DB) UpsertRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (id, name, description, capacity, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                description = excluded.description,
                capacity = excluded.capacity,
                updated_at = excluded.updated_at`
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, query,
		room.ID, room.Name, room.Description, room.Capacity, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert room: %w", err)
	}
	return nil
}
