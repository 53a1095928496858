package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"
)

// ShootRepository implements repository.ShootStore with SQLite.
type ShootRepository struct {
	db *sql.DB
}

// NewShootRepository creates a new SQLite shoot repository.
func NewShootRepository(db *sql.DB) *ShootRepository {
	return &ShootRepository{db: db}
}

const shootColumns = `s.id, s.merchant_name, s.location, s.shoot_date, s.shoot_time, s.photographer_id,
	s.status, s.qc_link, s.raw_link, s.payout, s.created_at, s.updated_at`

const photographerColumns = `, p.id, p.name, p.phone, p.role, p.created_at, p.updated_at`

func scanShoot(row scanner, withPhotographer bool) (*models.Shoot, error) {
	var (
		s                         models.Shoot
		date, status              string
		photographerID            sql.NullString
		qcLink, rawLink           sql.NullString
		payout                    sql.NullFloat64
		pID, pName, pPhone, pRole sql.NullString
		pCreated, pUpdated        sql.NullTime
	)
	dest := []any{
		&s.ID, &s.MerchantName, &s.Location, &date, &s.ShootTime, &photographerID,
		&status, &qcLink, &rawLink, &payout, &s.CreatedAt, &s.UpdatedAt,
	}
	if withPhotographer {
		dest = append(dest, &pID, &pName, &pPhone, &pRole, &pCreated, &pUpdated)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	d, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	s.ShootDate = d
	s.Status = models.ShootStatus(status)
	s.PhotographerID = stringPtr(photographerID)
	s.QCLink = stringPtr(qcLink)
	s.RawLink = stringPtr(rawLink)
	s.Payout = floatPtr(payout)

	if pID.Valid {
		s.Photographer = &models.Profile{
			ID:        pID.String,
			Name:      pName.String,
			Phone:     stringPtr(pPhone),
			Role:      models.Role(pRole.String),
			CreatedAt: pCreated.Time,
			UpdatedAt: pUpdated.Time,
		}
	}

	return &s, nil
}

// Create persists a new shoot.
func (r *ShootRepository) Create(ctx context.Context, shoot *models.Shoot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shoots (id, merchant_name, location, shoot_date, shoot_time, photographer_id,
			status, qc_link, raw_link, payout, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shoot.ID, shoot.MerchantName, shoot.Location, shoot.ShootDate.String(), shoot.ShootTime,
		nullString(shoot.PhotographerID), string(shoot.Status), nullString(shoot.QCLink),
		nullString(shoot.RawLink), nullFloat(shoot.Payout), shoot.CreatedAt.UTC(), shoot.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create shoot: %w", err)
	}
	return nil
}

// GetByID retrieves a shoot by its ID together with its photographer.
func (r *ShootRepository) GetByID(ctx context.Context, id string) (*models.Shoot, error) {
	query := "SELECT " + shootColumns + photographerColumns +
		" FROM shoots s LEFT JOIN profiles p ON p.id = s.photographer_id WHERE s.id = ?"
	shoot, err := scanShoot(r.db.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shoot: %w", err)
	}
	return shoot, nil
}

// List retrieves shoots matching a filter ordered by shoot date and time.
func (r *ShootRepository) List(ctx context.Context, filter repository.ShootFilter) ([]*models.Shoot, error) {
	var (
		where []string
		args  []any
	)

	if filter.PhotographerID != "" {
		where = append(where, "s.photographer_id = ?")
		args = append(args, filter.PhotographerID)
	}
	if filter.AssignedOnly {
		where = append(where, "s.photographer_id IS NOT NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "s.status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !filter.From.IsZero() {
		where = append(where, "s.shoot_date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		where = append(where, "s.shoot_date <= ?")
		args = append(args, filter.To.String())
	}

	query := "SELECT " + shootColumns
	if filter.WithPhotographer {
		query += photographerColumns + " FROM shoots s LEFT JOIN profiles p ON p.id = s.photographer_id"
	} else {
		query += " FROM shoots s"
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.shoot_date ASC, s.shoot_time ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shoots: %w", err)
	}
	defer rows.Close()

	var shoots []*models.Shoot
	for rows.Next() {
		shoot, err := scanShoot(rows, filter.WithPhotographer)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shoot: %w", err)
		}
		shoots = append(shoots, shoot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shoots: %w", err)
	}
	return shoots, nil
}

// Update writes the workflow fields of a shoot.
func (r *ShootRepository) Update(ctx context.Context, shoot *models.Shoot) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE shoots SET status = ?, qc_link = ?, raw_link = ?, payout = ?, updated_at = ? WHERE id = ?",
		string(shoot.Status), nullString(shoot.QCLink), nullString(shoot.RawLink), nullFloat(shoot.Payout),
		shoot.UpdatedAt.UTC(), shoot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shoot: %w", err)
	}
	return requireAffected(result)
}

// CountByStatus returns the number of shoots in each status.
func (r *ShootRepository) CountByStatus(ctx context.Context) (map[models.ShootStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM shoots GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count shoots: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ShootStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan shoot count: %w", err)
		}
		counts[models.ShootStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shoot counts: %w", err)
	}
	return counts, nil
}
