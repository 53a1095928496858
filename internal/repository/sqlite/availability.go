package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"shootdesk-backend/internal/models"
)

// AvailabilityRepository implements repository.AvailabilityStore with SQLite.
type AvailabilityRepository struct {
	db *sql.DB
}

// NewAvailabilityRepository creates a new SQLite availability repository.
func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Add marks a user available on a date.
func (r *AvailabilityRepository) Add(ctx context.Context, a *models.Availability) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO availability (id, user_id, available_date, created_at) VALUES (?, ?, ?, ?)",
		a.ID, a.UserID, a.AvailableDate.String(), a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to add availability: %w", err)
	}
	return nil
}

// Remove clears a user's availability on a date.
func (r *AvailabilityRepository) Remove(ctx context.Context, userID string, date models.Date) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM availability WHERE user_id = ? AND available_date = ?",
		userID, date.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to remove availability: %w", err)
	}
	return nil
}

// Exists checks whether a user is available on a date.
func (r *AvailabilityRepository) Exists(ctx context.Context, userID string, date models.Date) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM availability WHERE user_id = ? AND available_date = ?)",
		userID, date.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return exists, nil
}

// ListByUser returns a user's availability between two dates inclusive.
func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID string, from, to models.Date) ([]*models.Availability, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, available_date, created_at FROM availability
		 WHERE user_id = ? AND available_date BETWEEN ? AND ?
		 ORDER BY available_date`,
		userID, from.String(), to.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer rows.Close()

	var result []*models.Availability
	for rows.Next() {
		var (
			a    models.Availability
			date string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		if a.AvailableDate, err = models.ParseDate(date); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}
	return result, nil
}

// UserIDsOn returns the users available on a date.
func (r *AvailabilityRepository) UserIDsOn(ctx context.Context, date models.Date) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM availability WHERE available_date = ?",
		date.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list available users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating available users: %w", err)
	}
	return ids, nil
}
