package services

import (
	"context"
	"time"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxAvailabilityRange bounds a single availability listing
const maxAvailabilityRange = 366

// AvailabilityService maintains the per-photographer availability ledger
type AvailabilityService struct {
	store  *repository.Store
	broker *Broker
	loc    *time.Location
	now    func() time.Time
}

// NewAvailabilityService creates a new availability service.
// loc decides which calendar day counts as today.
func NewAvailabilityService(store *repository.Store, broker *Broker, loc *time.Location) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{
		store:  store,
		broker: broker,
		loc:    loc,
		now:    time.Now,
	}
}

// Today returns the current calendar day in the business timezone
func (s *AvailabilityService) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

func (s *AvailabilityService) checkEditable(date models.Date) error {
	if date.IsZero() {
		return validationf("date", "date is required")
	}
	if date.Before(s.Today()) {
		return validationf("date", "cannot change availability for past dates")
	}
	return nil
}

func requireAction(session *Session, action access.Action) error {
	if session == nil {
		return ErrUnauthorized
	}
	if !access.Allowed(session.Role, action) {
		return &AuthorizationError{Reason: "your role cannot perform this action"}
	}
	return nil
}

// IsAvailable reports whether a photographer is marked available on a date
func (s *AvailabilityService) IsAvailable(ctx context.Context, photographerID string, date models.Date) (bool, error) {
	ok, err := s.store.Availability.Exists(ctx, photographerID, date)
	if err != nil {
		return false, backend("check availability", err)
	}
	return ok, nil
}

// SetAvailable marks the caller available on a date. Repeating it is a no-op.
func (s *AvailabilityService) SetAvailable(ctx context.Context, session *Session, date models.Date) error {
	if err := requireAction(session, access.ActionToggleAvailability); err != nil {
		return err
	}
	if err := s.checkEditable(date); err != nil {
		return err
	}

	a := &models.Availability{
		ID:            uuid.New().String(),
		UserID:        session.ProfileID,
		AvailableDate: date,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Availability.Add(ctx, a); err != nil {
		return backend("set availability", err)
	}

	s.publish(session.ProfileID, date, true)
	return nil
}

// SetUnavailable clears the caller's availability on a date. Repeating it is a no-op.
func (s *AvailabilityService) SetUnavailable(ctx context.Context, session *Session, date models.Date) error {
	if err := requireAction(session, access.ActionToggleAvailability); err != nil {
		return err
	}
	if err := s.checkEditable(date); err != nil {
		return err
	}

	if err := s.store.Availability.Remove(ctx, session.ProfileID, date); err != nil {
		return backend("clear availability", err)
	}

	s.publish(session.ProfileID, date, false)
	return nil
}

// Toggle flips the caller's availability on a date and returns the new state
func (s *AvailabilityService) Toggle(ctx context.Context, session *Session, date models.Date) (bool, error) {
	if err := requireAction(session, access.ActionToggleAvailability); err != nil {
		return false, err
	}
	if err := s.checkEditable(date); err != nil {
		return false, err
	}

	available, err := s.IsAvailable(ctx, session.ProfileID, date)
	if err != nil {
		return false, err
	}
	if available {
		return false, s.SetUnavailable(ctx, session, date)
	}
	return true, s.SetAvailable(ctx, session, date)
}

// ListRange returns the caller's available dates between from and to inclusive
func (s *AvailabilityService) ListRange(ctx context.Context, session *Session, from, to models.Date) ([]*models.Availability, error) {
	if err := requireAction(session, access.ActionToggleAvailability); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, validationf("range", "both from and to dates are required")
	}
	if to.Before(from) {
		return nil, validationf("range", "end date must not be before start date")
	}
	if to.After(from.AddDays(maxAvailabilityRange)) {
		return nil, validationf("range", "range cannot exceed %d days", maxAvailabilityRange)
	}

	list, err := s.store.Availability.ListByUser(ctx, session.ProfileID, from, to)
	if err != nil {
		return nil, backend("list availability", err)
	}
	return list, nil
}

// EligiblePhotographers returns the photographers available on a date, ordered by name
func (s *AvailabilityService) EligiblePhotographers(ctx context.Context, date models.Date) ([]*models.Profile, error) {
	ids, err := s.store.Availability.UserIDsOn(ctx, date)
	if err != nil {
		return nil, backend("list available photographers", err)
	}
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}

	available := make(map[string]bool, len(ids))
	for _, id := range ids {
		available[id] = true
	}

	photographers, err := s.store.Profiles.ListByRole(ctx, models.RolePhotographer)
	if err != nil {
		return nil, backend("list photographers", err)
	}

	eligible := make([]*models.Profile, 0, len(ids))
	for _, p := range photographers {
		if available[p.ID] {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

func (s *AvailabilityService) publish(photographerID string, date models.Date, available bool) {
	log.Debug().
		Str("photographer_id", photographerID).
		Str("date", date.String()).
		Bool("available", available).
		Msg("Availability changed")

	if s.broker == nil {
		return
	}
	s.broker.Publish(Event{
		Type:           EventAvailabilityChanged,
		PhotographerID: photographerID,
		Date:           date,
		Available:      &available,
	})
}
