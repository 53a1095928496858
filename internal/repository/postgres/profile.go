// Package postgres implements the repository interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isNotFound reports a missing row or an id that is not a valid UUID
func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, name, phone, role, push_token, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Role, &p.PushToken, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return insertProfile(ctx, r.db, profile)
}

func insertProfile(ctx context.Context, db execer, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, name, phone, role, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Exec(ctx, query,
		profile.ID, profile.Name, profile.Phone, string(profile.Role), profile.PushToken,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListByRole retrieves all profiles with a role, ordered by name
func (r *ProfileRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// CountByRole counts profiles with a role
func (r *ProfileRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// UpdatePushToken updates the push token for a profile
func (r *ProfileRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	query := `UPDATE profiles SET push_token = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, id)
	if err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CredentialRepository handles database operations for credentials
type CredentialRepository struct {
	db *pgxpool.Pool
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create stores a credential
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	return insertCredential(ctx, r.db, cred)
}

// CreateAccount inserts a profile and its credential in one transaction
func (r *CredentialRepository) CreateAccount(ctx context.Context, profile *models.Profile, cred *models.Credential) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertProfile(ctx, tx, profile); err != nil {
			return err
		}
		return insertCredential(ctx, tx, cred)
	})
}

func insertCredential(ctx context.Context, db execer, cred *models.Credential) error {
	query := `
		INSERT INTO credentials (profile_id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Exec(ctx, query, cred.ProfileID, cred.Email, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// GetByEmail retrieves a credential by email
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

// GetByProfileID retrieves a credential by profile ID
func (r *CredentialRepository) GetByProfileID(ctx context.Context, profileID string) (*models.Credential, error) {
	return r.getOne(ctx, `WHERE profile_id = $1`, profileID)
}

func (r *CredentialRepository) getOne(ctx context.Context, where string, arg string) (*models.Credential, error) {
	query := `SELECT profile_id, email, password_hash, created_at, updated_at FROM credentials ` + where
	var c models.Credential
	err := r.db.QueryRow(ctx, query, arg).Scan(&c.ProfileID, &c.Email, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &c, nil
}

// UpdatePasswordHash replaces the password hash of a profile
func (r *CredentialRepository) UpdatePasswordHash(ctx context.Context, profileID, hash string) error {
	query := `UPDATE credentials SET password_hash = $1, updated_at = now() WHERE profile_id = $2`
	result, err := r.db.Exec(ctx, query, hash, profileID)
	if err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
