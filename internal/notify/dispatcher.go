package notify

import (
	"context"
	"time"

	"shootdesk-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Dispatcher routes workflow events to the admin channel or to photographers.
// Delivery failures are logged and returned, never raised.
type Dispatcher struct {
	sms        Sender
	push       Pusher
	adminPhone string
}

// NewDispatcher creates a new dispatcher. A nil pusher disables push.
func NewDispatcher(sms Sender, push Pusher, adminPhone string) *Dispatcher {
	if push == nil {
		push = NoopPusher{}
	}
	return &Dispatcher{
		sms:        sms,
		push:       push,
		adminPhone: adminPhone,
	}
}

// ShootAssigned notifies a photographer of a new shoot by SMS and, when they
// have a registered device, by push.
func (d *Dispatcher) ShootAssigned(ctx context.Context, photographer *models.Profile, location string, date models.Date) Result {
	body := ShootAssignedMessage(location, date.Time())

	if photographer.PushToken != nil && *photographer.PushToken != "" {
		d.push.Push(ctx, *photographer.PushToken, body, CategoryShootAssigned)
	}

	if photographer.Phone == nil || *photographer.Phone == "" {
		log.Warn().
			Str("photographer_id", photographer.ID).
			Msg("Photographer has no phone, skipping shoot assigned SMS")
		return Result{Success: false, Error: "photographer has no phone number"}
	}

	return d.sms.Send(ctx, *photographer.Phone, body, CategoryShootAssigned)
}

// PhotographerReached tells the admin a photographer arrived at the merchant
func (d *Dispatcher) PhotographerReached(ctx context.Context, merchantName, photographerName string) Result {
	return d.toAdmin(ctx, PhotographerReachedMessage(merchantName, photographerName), CategoryPhotographerReached)
}

// QCUploaded tells the admin QC photos are ready for review
func (d *Dispatcher) QCUploaded(ctx context.Context, merchantName, link string) Result {
	return d.toAdmin(ctx, QCUploadedMessage(merchantName, link), CategoryQCUploaded)
}

func (d *Dispatcher) toAdmin(ctx context.Context, body string, category Category) Result {
	if d.adminPhone == "" {
		log.Info().
			Str("category", string(category)).
			Str("message", body).
			Msg("No admin phone configured, SMS not sent")
		return Result{Success: false, Error: "admin phone not configured"}
	}
	return d.sms.Send(ctx, d.adminPhone, body, category)
}

// SendTimeout bounds a single notification attempt
const SendTimeout = 10 * time.Second
