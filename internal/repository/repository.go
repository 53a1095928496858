// Package repository defines the persistence contracts shared by the
// PostgreSQL and SQLite implementations.
package repository

import (
	"context"
	"errors"

	"shootdesk-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("record already exists")
)

// ProfileStore persists profiles
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
}

// CredentialStore persists sign-in credentials
type CredentialStore interface {
	Create(ctx context.Context, cred *models.Credential) error
	// CreateAccount inserts a profile and its credential in one transaction.
	// A taken email returns ErrDuplicate and leaves no profile behind.
	CreateAccount(ctx context.Context, profile *models.Profile, cred *models.Credential) error
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByProfileID(ctx context.Context, profileID string) (*models.Credential, error)
	UpdatePasswordHash(ctx context.Context, profileID, hash string) error
}

// AvailabilityStore persists the availability ledger
type AvailabilityStore interface {
	// Add inserts a row; it is a no-op when the (user, date) pair exists.
	Add(ctx context.Context, a *models.Availability) error
	// Remove deletes the (user, date) row; it is a no-op when absent.
	Remove(ctx context.Context, userID string, date models.Date) error
	Exists(ctx context.Context, userID string, date models.Date) (bool, error)
	ListByUser(ctx context.Context, userID string, from, to models.Date) ([]*models.Availability, error)
	// UserIDsOn returns every user marked available on date.
	UserIDsOn(ctx context.Context, date models.Date) ([]string, error)
}

// ShootFilter narrows shoot listings
type ShootFilter struct {
	PhotographerID string
	AssignedOnly   bool
	Statuses       []models.ShootStatus
	From           models.Date
	To             models.Date
	// WithPhotographer loads the assigned profile into Shoot.Photographer.
	WithPhotographer bool
}

// ShootStore persists shoots
type ShootStore interface {
	Create(ctx context.Context, shoot *models.Shoot) error
	GetByID(ctx context.Context, id string) (*models.Shoot, error)
	List(ctx context.Context, filter ShootFilter) ([]*models.Shoot, error)
	// Update writes the mutable workflow fields: status, links, payout and updated_at.
	Update(ctx context.Context, shoot *models.Shoot) error
	CountByStatus(ctx context.Context) (map[models.ShootStatus]int, error)
}

// Store bundles the stores of one backend
type Store struct {
	Profiles     ProfileStore
	Credentials  CredentialStore
	Availability AvailabilityStore
	Shoots       ShootStore
}
