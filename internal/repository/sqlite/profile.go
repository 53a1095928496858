package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ProfileRepository implements repository.ProfileStore with SQLite.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = "id, name, phone, role, push_token, created_at, updated_at"

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		p                models.Profile
		phone, pushToken sql.NullString
		role             string
	)
	if err := row.Scan(&p.ID, &p.Name, &phone, &role, &pushToken, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Phone = stringPtr(phone)
	p.PushToken = stringPtr(pushToken)
	p.Role = models.Role(role)
	return &p, nil
}

// Create persists a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return insertProfile(ctx, r.db, profile)
}

func insertProfile(ctx context.Context, ex execer, profile *models.Profile) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO profiles (id, name, phone, role, push_token, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		profile.ID, profile.Name, nullString(profile.Phone), string(profile.Role), nullString(profile.PushToken),
		profile.CreatedAt.UTC(), profile.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListByRole retrieves all profiles with a role, ordered by name.
func (r *ProfileRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE role = ? ORDER BY name",
		string(role),
	)
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

// CountByRole counts profiles with a role.
func (r *ProfileRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE role = ?", string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// UpdatePushToken replaces the push token of a profile.
func (r *ProfileRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET push_token = ?, updated_at = ? WHERE id = ?",
		nullString(pushToken), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CredentialRepository implements repository.CredentialStore with SQLite.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new SQLite credential repository.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create persists a credential.
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	return insertCredential(ctx, r.db, cred)
}

// CreateAccount inserts a profile and its credential in one transaction.
func (r *CredentialRepository) CreateAccount(ctx context.Context, profile *models.Profile, cred *models.Credential) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProfile(ctx, tx, profile); err != nil {
		return err
	}
	if err := insertCredential(ctx, tx, cred); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account: %w", err)
	}
	return nil
}

func insertCredential(ctx context.Context, ex execer, cred *models.Credential) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO credentials (profile_id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		cred.ProfileID, cred.Email, cred.PasswordHash, cred.CreatedAt.UTC(), cred.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// GetByEmail retrieves a credential by email.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByProfileID retrieves a credential by profile ID.
func (r *CredentialRepository) GetByProfileID(ctx context.Context, profileID string) (*models.Credential, error) {
	return r.getOne(ctx, "profile_id = ?", profileID)
}

func (r *CredentialRepository) getOne(ctx context.Context, where, arg string) (*models.Credential, error) {
	var c models.Credential
	err := r.db.QueryRowContext(ctx,
		"SELECT profile_id, email, password_hash, created_at, updated_at FROM credentials WHERE "+where,
		arg,
	).Scan(&c.ProfileID, &c.Email, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &c, nil
}

// UpdatePasswordHash replaces the password hash of a profile.
func (r *CredentialRepository) UpdatePasswordHash(ctx context.Context, profileID, hash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE credentials SET password_hash = ?, updated_at = ? WHERE profile_id = ?",
		hash, time.Now().UTC(), profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result)
}
