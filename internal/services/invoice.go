package services

import (
	"context"
	"sort"
	"time"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"
)

// InvoiceService aggregates completed shoots into per-photographer payouts
type InvoiceService struct {
	store *repository.Store
	rate  int64
}

// NewInvoiceService creates a new invoice service paying rate per completed shoot
func NewInvoiceService(store *repository.Store, rate int64) *InvoiceService {
	return &InvoiceService{store: store, rate: rate}
}

// Rate returns the flat amount credited per shoot
func (s *InvoiceService) Rate() int64 { return s.rate }

// Compute builds the invoice for shoots dated within [start, end].
// Only assigned shoots in Completed, QC_Uploaded or Approved count.
func (s *InvoiceService) Compute(ctx context.Context, session *Session, start, end models.Date) (*models.Invoice, error) {
	if err := requireAction(session, access.ActionViewInvoice); err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, validationf("period", "both start and end dates are required")
	}
	if end.Before(start) {
		return nil, validationf("period", "end date must not be before start date")
	}

	shoots, err := s.store.Shoots.List(ctx, repository.ShootFilter{
		AssignedOnly:     true,
		Statuses:         models.DoneStatuses(),
		From:             start,
		To:               end,
		WithPhotographer: true,
	})
	if err != nil {
		return nil, backend("list shoots", err)
	}

	lines := make(map[string]*models.InvoiceLine)
	for _, shoot := range shoots {
		if shoot.PhotographerID == nil {
			continue
		}
		id := *shoot.PhotographerID

		line, ok := lines[id]
		if !ok {
			line = &models.InvoiceLine{Photographer: models.Profile{ID: id}}
			if shoot.Photographer != nil {
				line.Photographer = *shoot.Photographer
			}
			lines[id] = line
		}

		line.ShootCount++
		if shoot.Status == models.StatusApproved && shoot.Payout != nil {
			line.ApprovedCount++
			line.ApprovedPayoutTotal += *shoot.Payout
		}
	}

	invoice := &models.Invoice{
		PeriodStart:  start,
		PeriodEnd:    end,
		RatePerShoot: s.rate,
		Lines:        make([]models.InvoiceLine, 0, len(lines)),
	}
	for _, line := range lines {
		line.TotalPayout = int64(line.ShootCount) * s.rate
		invoice.TotalShoots += line.ShootCount
		invoice.TotalPayout += line.TotalPayout
		invoice.Lines = append(invoice.Lines, *line)
	}
	sort.Slice(invoice.Lines, func(i, j int) bool {
		a, b := invoice.Lines[i].Photographer, invoice.Lines[j].Photographer
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	return invoice, nil
}

// ComputeMonth builds the invoice for a calendar month
func (s *InvoiceService) ComputeMonth(ctx context.Context, session *Session, year int, month time.Month) (*models.Invoice, error) {
	start, end := models.MonthBounds(year, month)
	return s.Compute(ctx, session, start, end)
}
