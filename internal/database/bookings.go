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

const bookingColumns = `b.id, b.room_id, r.name, b.user_id, COALESCE(p.full_name, ''),
                 b.start_time, b.end_time, b.status,
                 COALESCE(b.notes, ''), COALESCE(b.admin_notes, ''),
                 b.created_at, b.updated_at`

const bookingJoins = `FROM bookings b
              JOIN rooms r ON r.id = b.room_id
              LEFT JOIN profiles p ON p.id = b.user_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.RoomID, &b.RoomName, &b.UserID, &b.UserName,
		&b.StartTime, &b.EndTime, &b.Status, &b.Notes, &b.AdminNotes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return b, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookings returns the bookings for a room that intersect
// [from, to). This is the working set the availability check runs over.
func (db *DB) ListBookings(ctx context.Context, roomID string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.room_id = ? AND b.start_time < ? AND b.end_time > ?
              ORDER BY b.start_time ASC`
	rows, err := db.QueryContext(ctx, query, roomID, to.UTC(), from.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (db *DB) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.user_id = ?
              ORDER BY b.start_time DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (db *DB) ListAllBookings(ctx context.Context, status string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` WHERE 1=1`
	args := []any{}
	if status != "" {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	if !from.IsZero() {
		query += ` AND b.end_time > ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += ` AND b.start_time < ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY b.start_time ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list all bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

// InsertBooking persists a new pending booking. The overlap check is
// re-run inside the transaction so two concurrent requests for the same
// slot cannot both commit, regardless of what the caller pre-checked.
func (db *DB) InsertBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	queryCount := `SELECT COUNT(*) FROM bookings
                   WHERE room_id = ? AND status IN (?, ?)
                   AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.RoomID, models.StatusPending, models.StatusApproved,
		booking.EndTime.UTC(), booking.StartTime.UTC(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if conflicts > 0 {
		return domain.ErrSlotUnavailable
	}

	now := time.Now().UTC()
	queryInsert := `INSERT INTO bookings (
				id, room_id, user_id, start_time, end_time,
				status, notes, admin_notes, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, queryInsert,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.StartTime.UTC(),
		booking.EndTime.UTC(),
		booking.Status,
		booking.Notes,
		booking.AdminNotes,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

// UpdateBookingStatus transitions a pending booking and records the
// admin notes. The WHERE clause guards the state machine: a booking
// that already left pending is never mutated.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, status, adminNotes string) error {
	query := `UPDATE bookings SET status = ?, admin_notes = ?, updated_at = ?
              WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, adminNotes, time.Now().UTC(), id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrBookingNotFound
		}
		return domain.ErrNotPending
	}
	return nil
}

// DeleteBooking removes a booking scoped to its owner. Cancellation
// eligibility (pending, not yet started) is checked by the service; the
// owner scope here is the last line of defense.
func (db *DB) DeleteBooking(ctx context.Context, id, ownerID string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrBookingNotFound
		}
		return domain.ErrNotOwner
	}
	return nil
}
