package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNsPusher sends alerts to the photographer iOS app
type APNsPusher struct {
	client apnsClient
	topic  string
}

// NewAPNsPusher creates a token-authenticated APNs pusher from a .p8 key file
func NewAPNsPusher(keyFile, keyID, teamID, topic string, production bool) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// Push sends an alert with the message body
func (p *APNsPusher) Push(ctx context.Context, deviceToken, body string, category Category) Result {
	n := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		PushType:    apns2.PushTypeAlert,
		Payload: payload.NewPayload().
			AlertBody(body).
			Sound("default").
			Custom("category", string(category)),
	}

	res, err := p.client.PushWithContext(ctx, n)
	if err != nil {
		log.Error().Err(err).Str("category", string(category)).Msg("Failed to send push notification")
		return Result{Success: false, Error: err.Error()}
	}
	if !res.Sent() {
		log.Error().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Str("category", string(category)).
			Msg("Push notification rejected")
		return Result{Success: false, Error: res.Reason}
	}

	return Result{Success: true, MessageID: res.ApnsID}
}

// NoopPusher is used when push is not configured
type NoopPusher struct{}

// Push does nothing and reports success
func (NoopPusher) Push(ctx context.Context, deviceToken, body string, category Category) Result {
	return Result{Success: true, Note: "push disabled"}
}
