package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShootRepository handles database operations for shoots
type ShootRepository struct {
	db *pgxpool.Pool
}

// NewShootRepository creates a new shoot repository
func NewShootRepository(db *pgxpool.Pool) *ShootRepository {
	return &ShootRepository{db: db}
}

const shootColumns = `
	s.id::text, s.merchant_name, s.location, s.shoot_date::text, to_char(s.shoot_time, 'HH24:MI'),
	s.photographer_id::text, s.status, s.qc_link, s.raw_link, s.payout, s.created_at, s.updated_at`

const photographerColumns = `,
	p.id::text, p.name, p.phone, p.role, p.created_at, p.updated_at`

func scanShoot(row pgx.Row, withPhotographer bool) (*models.Shoot, error) {
	var (
		s    models.Shoot
		date string
	)
	dest := []any{
		&s.ID, &s.MerchantName, &s.Location, &date, &s.ShootTime,
		&s.PhotographerID, &s.Status, &s.QCLink, &s.RawLink, &s.Payout, &s.CreatedAt, &s.UpdatedAt,
	}

	var (
		pID, pName, pRole  *string
		pPhone             *string
		pCreated, pUpdated *time.Time
	)
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

	if pID != nil {
		s.Photographer = &models.Profile{
			ID:        *pID,
			Name:      derefString(pName),
			Phone:     pPhone,
			Role:      models.Role(derefString(pRole)),
			CreatedAt: derefTime(pCreated),
			UpdatedAt: derefTime(pUpdated),
		}
	}

	return &s, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Create creates a new shoot
func (r *ShootRepository) Create(ctx context.Context, shoot *models.Shoot) error {
	query := `
		INSERT INTO shoots (id, merchant_name, location, shoot_date, shoot_time, photographer_id,
			status, qc_link, raw_link, payout, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text::date, $5::text::time, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		shoot.ID, shoot.MerchantName, shoot.Location, shoot.ShootDate.String(), shoot.ShootTime,
		shoot.PhotographerID, string(shoot.Status), shoot.QCLink, shoot.RawLink, shoot.Payout,
		shoot.CreatedAt, shoot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shoot: %w", err)
	}
	return nil
}

// GetByID retrieves a shoot by ID together with its photographer
func (r *ShootRepository) GetByID(ctx context.Context, id string) (*models.Shoot, error) {
	query := `SELECT ` + shootColumns + photographerColumns + `
		FROM shoots s
		LEFT JOIN profiles p ON p.id = s.photographer_id
		WHERE s.id = $1
	`
	shoot, err := scanShoot(r.db.QueryRow(ctx, query, id), true)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shoot: %w", err)
	}
	return shoot, nil
}

// List retrieves shoots matching a filter ordered by shoot date
func (r *ShootRepository) List(ctx context.Context, filter repository.ShootFilter) ([]*models.Shoot, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.PhotographerID != "" {
		where = append(where, "s.photographer_id = "+arg(filter.PhotographerID))
	}
	if filter.AssignedOnly {
		where = append(where, "s.photographer_id IS NOT NULL")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "s.status = ANY("+arg(statuses)+")")
	}
	if !filter.From.IsZero() {
		where = append(where, "s.shoot_date >= "+arg(filter.From.String())+"::text::date")
	}
	if !filter.To.IsZero() {
		where = append(where, "s.shoot_date <= "+arg(filter.To.String())+"::text::date")
	}

	query := `SELECT ` + shootColumns
	if filter.WithPhotographer {
		query += photographerColumns + ` FROM shoots s LEFT JOIN profiles p ON p.id = s.photographer_id`
	} else {
		query += ` FROM shoots s`
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.shoot_date ASC, s.shoot_time ASC"

	rows, err := r.db.Query(ctx, query, args...)
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

// Update writes the workflow fields of a shoot
func (r *ShootRepository) Update(ctx context.Context, shoot *models.Shoot) error {
	query := `
		UPDATE shoots
		SET status = $1, qc_link = $2, raw_link = $3, payout = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		string(shoot.Status), shoot.QCLink, shoot.RawLink, shoot.Payout, shoot.UpdatedAt, shoot.ID,
	)
	if err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update shoot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of shoots in each status
func (r *ShootRepository) CountByStatus(ctx context.Context) (map[models.ShootStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM shoots GROUP BY status`)
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

// NewStore wires the PostgreSQL repositories into a repository.Store
func NewStore(db *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Profiles:     NewProfileRepository(db),
		Credentials:  NewCredentialRepository(db),
		Availability: NewAvailabilityRepository(db),
		Shoots:       NewShootRepository(db),
	}
}
