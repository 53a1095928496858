package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/notify"
	"shootdesk-backend/internal/repository"
	"shootdesk-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateShootInput holds the fields of a new shoot
type CreateShootInput struct {
	MerchantName   string      `json:"merchant_name"`
	Location       string      `json:"location"`
	ShootDate      models.Date `json:"shoot_date"`
	ShootTime      string      `json:"shoot_time"`
	PhotographerID string      `json:"photographer_id"`
}

// ShootListFilter narrows the admin shoot listing
type ShootListFilter struct {
	From     models.Date
	To       models.Date
	Statuses []models.ShootStatus
}

// PhotographerShoots splits a photographer's shoots into the two dashboard tabs
type PhotographerShoots struct {
	Active    []*models.Shoot `json:"active"`
	Completed []*models.Shoot `json:"completed"`
}

// ShootService runs the shoot workflow
type ShootService struct {
	store        *repository.Store
	availability *AvailabilityService
	dispatcher   *notify.Dispatcher
	broker       *Broker
	now          func() time.Time
	pending      sync.WaitGroup
}

// NewShootService creates a new shoot service
func NewShootService(
	store *repository.Store,
	availability *AvailabilityService,
	dispatcher *notify.Dispatcher,
	broker *Broker,
) *ShootService {
	return &ShootService{
		store:        store,
		availability: availability,
		dispatcher:   dispatcher,
		broker:       broker,
		now:          time.Now,
	}
}

var decimalPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ParsePayout parses an admin-entered payout amount. Only plain decimal
// notation is accepted.
func ParsePayout(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !decimalPattern.MatchString(raw) {
		return 0, validationf("payout", "payout must be a positive number")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, validationf("payout", "payout must be a positive number")
	}
	return v, nil
}

// Create schedules a shoot, optionally pre-assigned to an available photographer
func (s *ShootService) Create(ctx context.Context, session *Session, in CreateShootInput) (*models.Shoot, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if in.ShootDate.IsZero() {
		return nil, validationf("shoot_date", "shoot date is required")
	}
	shootTime, err := models.ParseShootTime(in.ShootTime)
	if err != nil {
		return nil, validationf("shoot_time", "%s", err.Error())
	}

	guard := workflow.CreateContext{
		ActorRole:      session.Role,
		MerchantName:   in.MerchantName,
		Location:       in.Location,
		PhotographerID: strings.TrimSpace(in.PhotographerID),
	}

	var photographer *models.Profile
	if guard.PhotographerID != "" && session.IsAdmin() {
		photographer, err = s.store.Profiles.GetByID(ctx, guard.PhotographerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationf("photographer_id", "photographer %s does not exist", guard.PhotographerID)
			}
			return nil, backend("get photographer", err)
		}
		guard.PhotographerRole = photographer.Role
		guard.PhotographerOK, err = s.availability.IsAvailable(ctx, photographer.ID, in.ShootDate)
		if err != nil {
			return nil, err
		}
	}

	if err := guardError(workflow.CanCreate(guard)); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	shoot := &models.Shoot{
		ID:           uuid.New().String(),
		MerchantName: strings.TrimSpace(in.MerchantName),
		Location:     strings.TrimSpace(in.Location),
		ShootDate:    in.ShootDate,
		ShootTime:    shootTime,
		Status:       models.StatusAssigned,
		CreatedAt:    now,
		UpdatedAt:    now,
		Photographer: photographer,
	}
	if photographer != nil {
		shoot.PhotographerID = &photographer.ID
	}

	if err := s.store.Shoots.Create(ctx, shoot); err != nil {
		return nil, backend("create shoot", err)
	}

	log.Info().
		Str("shoot_id", shoot.ID).
		Str("merchant", shoot.MerchantName).
		Str("shoot_date", shoot.ShootDate.String()).
		Msg("Shoot created")

	s.publish(EventShootCreated, shoot)

	if photographer != nil {
		location, date := shoot.Location, shoot.ShootDate
		s.notifyAsync(ctx, func(ctx context.Context) notify.Result {
			return s.dispatcher.ShootAssigned(ctx, photographer, location, date)
		})
	}

	return shoot, nil
}

// Get returns a shoot visible to the caller
func (s *ShootService) Get(ctx context.Context, session *Session, id string) (*models.Shoot, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	shoot, err := s.store.Shoots.GetByID(ctx, id)
	if err != nil {
		return nil, backend("get shoot", err)
	}
	if !session.IsAdmin() && !shoot.AssignedTo(session.ProfileID) {
		return nil, &AuthorizationError{Reason: "shoot " + id + " is not assigned to you"}
	}
	return shoot, nil
}

// ListAll returns every shoot with its photographer, ordered by date and time
func (s *ShootService) ListAll(ctx context.Context, session *Session, filter ShootListFilter) ([]*models.Shoot, error) {
	if err := requireAction(session, access.ActionListAllShoots); err != nil {
		return nil, err
	}
	shoots, err := s.store.Shoots.List(ctx, repository.ShootFilter{
		From:             filter.From,
		To:               filter.To,
		Statuses:         filter.Statuses,
		WithPhotographer: true,
	})
	if err != nil {
		return nil, backend("list shoots", err)
	}
	if shoots == nil {
		shoots = []*models.Shoot{}
	}
	return shoots, nil
}

// ListForPhotographer returns the caller's shoots split into active and completed
func (s *ShootService) ListForPhotographer(ctx context.Context, session *Session) (*PhotographerShoots, error) {
	if err := requireAction(session, access.ActionViewOwnShoots); err != nil {
		return nil, err
	}
	shoots, err := s.store.Shoots.List(ctx, repository.ShootFilter{PhotographerID: session.ProfileID})
	if err != nil {
		return nil, backend("list shoots", err)
	}

	result := &PhotographerShoots{
		Active:    []*models.Shoot{},
		Completed: []*models.Shoot{},
	}
	for _, shoot := range shoots {
		if shoot.Status.IsPending() {
			result.Active = append(result.Active, shoot)
		} else {
			result.Completed = append(result.Completed, shoot)
		}
	}
	return result, nil
}

// Advance moves the caller's shoot to its next status
func (s *ShootService) Advance(ctx context.Context, session *Session, id string) (*models.Shoot, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	shoot, err := s.store.Shoots.GetByID(ctx, id)
	if err != nil {
		return nil, backend("get shoot", err)
	}

	guard := workflow.AdvanceContext{
		ShootID:   shoot.ID,
		Status:    shoot.Status,
		ActorID:   session.ProfileID,
		ActorRole: session.Role,
	}
	if shoot.PhotographerID != nil {
		guard.PhotographerID = *shoot.PhotographerID
	}
	if err := guardError(workflow.CanAdvance(guard)); err != nil {
		return nil, err
	}

	next, _ := workflow.NextStatus(shoot.Status)
	previous := shoot.Status
	shoot.Status = next
	shoot.UpdatedAt = s.now().UTC()

	if err := s.store.Shoots.Update(ctx, shoot); err != nil {
		return nil, backend("update shoot", err)
	}

	log.Info().
		Str("shoot_id", shoot.ID).
		Str("from", string(previous)).
		Str("to", string(next)).
		Msg("Shoot advanced")

	s.publish(EventShootUpdated, shoot)

	if next == models.StatusReached {
		merchant, name := shoot.MerchantName, session.Name
		if shoot.Photographer != nil {
			name = shoot.Photographer.Name
		}
		s.notifyAsync(ctx, func(ctx context.Context) notify.Result {
			return s.dispatcher.PhotographerReached(ctx, merchant, name)
		})
	}

	return shoot, nil
}

// SubmitDeliverables records the QC and raw links of a completed shoot
func (s *ShootService) SubmitDeliverables(ctx context.Context, session *Session, id, qcLink, rawLink string) (*models.Shoot, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	shoot, err := s.store.Shoots.GetByID(ctx, id)
	if err != nil {
		return nil, backend("get shoot", err)
	}

	qcLink, rawLink = strings.TrimSpace(qcLink), strings.TrimSpace(rawLink)
	guard := workflow.DeliverablesContext{
		ShootID:   shoot.ID,
		Status:    shoot.Status,
		ActorID:   session.ProfileID,
		ActorRole: session.Role,
		QCLink:    qcLink,
		RawLink:   rawLink,
	}
	if shoot.PhotographerID != nil {
		guard.PhotographerID = *shoot.PhotographerID
	}
	if err := guardError(workflow.CanSubmitDeliverables(guard)); err != nil {
		return nil, err
	}

	shoot.QCLink = optional(qcLink)
	shoot.RawLink = optional(rawLink)
	shoot.Status = models.StatusQCUploaded
	shoot.UpdatedAt = s.now().UTC()

	if err := s.store.Shoots.Update(ctx, shoot); err != nil {
		return nil, backend("update shoot", err)
	}

	log.Info().
		Str("shoot_id", shoot.ID).
		Bool("qc_link", qcLink != "").
		Bool("raw_link", rawLink != "").
		Msg("Deliverables submitted")

	s.publish(EventShootUpdated, shoot)

	if qcLink != "" {
		merchant := shoot.MerchantName
		s.notifyAsync(ctx, func(ctx context.Context) notify.Result {
			return s.dispatcher.QCUploaded(ctx, merchant, qcLink)
		})
	}

	return shoot, nil
}

// Approve signs off a shoot with the admin-entered payout
func (s *ShootService) Approve(ctx context.Context, session *Session, id string, payout float64) (*models.Shoot, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if !session.IsAdmin() {
		return nil, guardError(workflow.CanApprove(workflow.ApproveContext{ShootID: id, ActorRole: session.Role}))
	}

	shoot, err := s.store.Shoots.GetByID(ctx, id)
	if err != nil {
		return nil, backend("get shoot", err)
	}

	if err := guardError(workflow.CanApprove(workflow.ApproveContext{
		ShootID:   shoot.ID,
		Status:    shoot.Status,
		ActorRole: session.Role,
		Payout:    payout,
	})); err != nil {
		return nil, err
	}

	shoot.Payout = &payout
	shoot.Status = models.StatusApproved
	shoot.UpdatedAt = s.now().UTC()

	if err := s.store.Shoots.Update(ctx, shoot); err != nil {
		return nil, backend("update shoot", err)
	}

	log.Info().
		Str("shoot_id", shoot.ID).
		Float64("payout", payout).
		Msg("Shoot approved")

	s.publish(EventShootUpdated, shoot)
	return shoot, nil
}

// Stats returns the admin dashboard counters
func (s *ShootService) Stats(ctx context.Context, session *Session) (*models.DashboardStats, error) {
	if err := requireAction(session, access.ActionViewStats); err != nil {
		return nil, err
	}
	counts, err := s.store.Shoots.CountByStatus(ctx)
	if err != nil {
		return nil, backend("count shoots", err)
	}
	photographers, err := s.store.Profiles.CountByRole(ctx, models.RolePhotographer)
	if err != nil {
		return nil, backend("count photographers", err)
	}

	stats := &models.DashboardStats{Photographers: photographers}
	for status, n := range counts {
		stats.TotalShoots += n
		switch {
		case status.IsDone():
			stats.CompletedShoots += n
		case status.IsPending():
			stats.PendingShoots += n
		}
	}
	return stats, nil
}

// ListPhotographers returns all photographers, or only those available on a date when one is given
func (s *ShootService) ListPhotographers(ctx context.Context, session *Session, availableOn models.Date) ([]*models.Profile, error) {
	if err := requireAction(session, access.ActionListPhotographers); err != nil {
		return nil, err
	}
	if !availableOn.IsZero() {
		return s.availability.EligiblePhotographers(ctx, availableOn)
	}
	photographers, err := s.store.Profiles.ListByRole(ctx, models.RolePhotographer)
	if err != nil {
		return nil, backend("list photographers", err)
	}
	if photographers == nil {
		photographers = []*models.Profile{}
	}
	return photographers, nil
}

// Wait blocks until in-flight notifications finish
func (s *ShootService) Wait() {
	s.pending.Wait()
}

func (s *ShootService) notifyAsync(ctx context.Context, send func(context.Context) notify.Result) {
	if s.dispatcher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, notify.SendTimeout)
		defer cancel()

		if res := send(ctx); !res.Success {
			log.Warn().Str("error", res.Error).Msg("Notification not delivered")
		}
	}()
}

func (s *ShootService) publish(eventType EventType, shoot *models.Shoot) {
	if s.broker == nil {
		return
	}
	event := Event{Type: eventType, ShootID: shoot.ID, Shoot: shoot}
	if shoot.PhotographerID != nil {
		event.PhotographerID = *shoot.PhotographerID
	}
	s.broker.Publish(event)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
