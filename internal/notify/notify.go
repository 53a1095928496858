// Package notify delivers SMS and push notifications for shoot events.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Category tags a notification with the event that caused it
type Category string

const (
	CategoryShootAssigned       Category = "shoot_assigned"
	CategoryPhotographerReached Category = "photographer_reached"
	CategoryQCUploaded          Category = "qc_uploaded"
)

// Result is the outcome of a delivery attempt
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Note      string `json:"note,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender delivers a text message to a phone number
type Sender interface {
	Send(ctx context.Context, to, body string, category Category) Result
}

// Pusher delivers a push notification to a device
type Pusher interface {
	Push(ctx context.Context, deviceToken, body string, category Category) Result
}

// MessageDateLayout is how dates appear inside messages
const MessageDateLayout = "January 2, 2006"

// ShootAssignedMessage is sent to a photographer when a shoot is created for them
func ShootAssignedMessage(location string, date time.Time) string {
	return fmt.Sprintf("New Shoot assigned at %s on %s. Log in to accept.", location, date.Format(MessageDateLayout))
}

// PhotographerReachedMessage is sent to the admin when a photographer arrives
func PhotographerReachedMessage(merchantName, photographerName string) string {
	return fmt.Sprintf("%s has reached %s location.", photographerName, merchantName)
}

// QCUploadedMessage is sent to the admin when QC photos are submitted
func QCUploadedMessage(merchantName, link string) string {
	return fmt.Sprintf("QC Uploaded for %s. Review here: %s", merchantName, link)
}
