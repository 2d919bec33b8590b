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

func (db *DB) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, email, COALESCE(full_name, ''), role, created_at, updated_at
              FROM profiles WHERE id = ?`
	p := &models.Profile{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (db *DB) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	query := `INSERT INTO profiles (id, email, full_name, role, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                email = excluded.email,
                full_name = excluded.full_name,
                role = excluded.role,
                updated_at = excluded.updated_at`
	role := profile.Role
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, query,
		profile.ID, profile.Email, profile.FullName, role, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// SetRoleByEmail promotes or demotes a known profile. Unknown emails
// are ignored so a config-listed admin who never signed in is not an
// error.
func (db *DB) SetRoleByEmail(ctx context.Context, email, role string) error {
	query := `UPDATE profiles SET role = ?, updated_at = ? WHERE email = ?`
	_, err := db.ExecContext(ctx, query, role, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}
