package services

import (
	"sync"
	"time"

	"shootdesk-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventType names a change observed by subscribers
type EventType string

const (
	EventShootCreated        EventType = "shoot_created"
	EventShootUpdated        EventType = "shoot_updated"
	EventAvailabilityChanged EventType = "availability_changed"
)

const subscriptionBuffer = 32

// Event describes a committed change
type Event struct {
	Type           EventType     `json:"type"`
	ShootID        string        `json:"shoot_id,omitempty"`
	PhotographerID string        `json:"photographer_id,omitempty"`
	Shoot          *models.Shoot `json:"shoot,omitempty"`
	Date           models.Date   `json:"date,omitempty"`
	Available      *bool         `json:"available,omitempty"`
	At             time.Time     `json:"at"`
}

// EventFilter selects the events a subscription receives
type EventFilter func(Event) bool

// VisibleTo returns the filter for what a session may observe.
// Admins see everything; photographers see only their own shoots and availability.
func VisibleTo(session *Session) EventFilter {
	if session.IsAdmin() {
		return func(Event) bool { return true }
	}
	return func(e Event) bool {
		return e.PhotographerID == session.ProfileID
	}
}

// Subscription receives events until it is unsubscribed
type Subscription struct {
	ID     string
	C      <-chan Event
	ch     chan Event
	filter EventFilter
	once   sync.Once
}

// Broker fans committed changes out to subscribers
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewBroker creates a new broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*Subscription)}
}

// Subscribe registers a subscription. A nil filter receives every event.
func (b *Broker) Subscribe(filter EventFilter) *Subscription {
	if filter == nil {
		filter = func(Event) bool { return true }
	}
	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{
		ID:     uuid.New().String(),
		C:      ch,
		ch:     ch,
		filter: filter,
	}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscription and closes its channel. Safe to call twice.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.ID)
	b.mu.Unlock()

	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers an event without blocking. Full subscribers miss it.
func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.filter(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Warn().
				Str("subscription_id", sub.ID).
				Str("event", string(event.Type)).
				Msg("Subscriber is too slow, dropping event")
		}
	}
}

// Len returns the number of active subscriptions
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
