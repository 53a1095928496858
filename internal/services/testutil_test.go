package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/notify"
	"shootdesk-backend/internal/repository"
	"shootdesk-backend/internal/repository/sqlite"

	"golang.org/x/crypto/bcrypt"
)

const adminPhone = "+15550000"

// fixedNow is 2024-06-10 10:00 UTC
var fixedNow = time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type sentMessage struct {
	To       string
	Body     string
	Category notify.Category
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingSender) Send(_ context.Context, to, body string, category notify.Category) notify.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{To: to, Body: body, Category: category})
	return notify.Result{Success: true, MessageID: "test"}
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

type failingSender struct {
	mu    sync.Mutex
	calls int
}

func (f *failingSender) Send(context.Context, string, string, notify.Category) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return notify.Result{Success: false, Error: "provider down"}
}

func (f *failingSender) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	store        *repository.Store
	sessions     *SessionStore
	broker       *Broker
	sender       *recordingSender
	auth         *AuthService
	availability *AvailabilityService
	shoots       *ShootService
	invoices     *InvoiceService
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := sqlite.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return sqlite.NewStore(db)
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newTestStore(t)
	sessions := NewSessionStore(24 * time.Hour)
	sessions.now = clock
	broker := NewBroker()
	sender := &recordingSender{}

	auth := NewAuthService(store, sessions, "test-secret")
	auth.hashCost = bcrypt.MinCost
	auth.now = clock

	availability := NewAvailabilityService(store, broker, time.UTC)
	availability.now = clock

	shoots := NewShootService(store, availability, notify.NewDispatcher(sender, nil, adminPhone), broker)
	shoots.now = clock

	return &testEnv{
		store:        store,
		sessions:     sessions,
		broker:       broker,
		sender:       sender,
		auth:         auth,
		availability: availability,
		shoots:       shoots,
		invoices:     NewInvoiceService(store, 500),
	}
}

func (e *testEnv) createProfile(t *testing.T, name string, role models.Role, phone string) (*models.Profile, *Session) {
	t.Helper()

	p := &models.Profile{
		ID:        "id-" + name,
		Name:      name,
		Role:      role,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	if phone != "" {
		p.Phone = &phone
	}
	if err := e.store.Profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p, e.sessions.Create(p)
}

func june(day int) models.Date {
	return models.NewDate(2024, time.June, day)
}

func fixedZone(t *testing.T, name string, hours int) *time.Location {
	t.Helper()
	return time.FixedZone(name, hours*60*60)
}
