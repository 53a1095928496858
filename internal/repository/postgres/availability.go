package postgres

import (
	"context"
	"fmt"

	"shootdesk-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityRepository handles database operations for availability
type AvailabilityRepository struct {
	db *pgxpool.Pool
}

// NewAvailabilityRepository creates a new availability repository
func NewAvailabilityRepository(db *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Add marks a user available on a date
func (r *AvailabilityRepository) Add(ctx context.Context, a *models.Availability) error {
	query := `
		INSERT INTO availability (id, user_id, available_date, created_at)
		VALUES ($1, $2, $3::text::date, $4)
		ON CONFLICT (user_id, available_date) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.AvailableDate.String(), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add availability: %w", err)
	}
	return nil
}

// Remove clears a user's availability on a date
func (r *AvailabilityRepository) Remove(ctx context.Context, userID string, date models.Date) error {
	query := `DELETE FROM availability WHERE user_id = $1 AND available_date = $2::text::date`
	if _, err := r.db.Exec(ctx, query, userID, date.String()); err != nil {
		return fmt.Errorf("failed to remove availability: %w", err)
	}
	return nil
}

// Exists checks whether a user is available on a date
func (r *AvailabilityRepository) Exists(ctx context.Context, userID string, date models.Date) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM availability WHERE user_id = $1 AND available_date = $2::text::date)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, date.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return exists, nil
}

// ListByUser returns a user's availability between two dates inclusive
func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID string, from, to models.Date) ([]*models.Availability, error) {
	query := `
		SELECT id, user_id, available_date::text, created_at
		FROM availability
		WHERE user_id = $1 AND available_date BETWEEN $2::text::date AND $3::text::date
		ORDER BY available_date
	`
	rows, err := r.db.Query(ctx, query, userID, from.String(), to.String())
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

// UserIDsOn returns the users available on a date
func (r *AvailabilityRepository) UserIDsOn(ctx context.Context, date models.Date) ([]string, error) {
	query := `SELECT user_id::text FROM availability WHERE available_date = $1::text::date`
	rows, err := r.db.Query(ctx, query, date.String())
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
