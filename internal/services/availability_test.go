package services

import (
	"context"
	"errors"
	"testing"

	"shootdesk-backend/internal/models"
)

func TestAvailabilityService_SetUnsetRoundTrip(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	ana, session := env.createProfile(t, "Ana", models.RolePhotographer, "")

	for i := 0; i < 2; i++ {
		if err := env.availability.SetAvailable(ctx, session, june(15)); err != nil {
			t.Fatalf("SetAvailable #%d failed: %v", i, err)
		}
	}
	ok, err := env.availability.IsAvailable(ctx, ana.ID, june(15))
	if err != nil || !ok {
		t.Fatalf("expected available, got %v (err %v)", ok, err)
	}

	list, err := env.availability.ListRange(ctx, session, june(1), june(30))
	if err != nil {
		t.Fatalf("ListRange failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected one row after repeated SetAvailable, got %d", len(list))
	}

	for i := 0; i < 2; i++ {
		if err := env.availability.SetUnavailable(ctx, session, june(15)); err != nil {
			t.Fatalf("SetUnavailable #%d failed: %v", i, err)
		}
	}
	ok, _ = env.availability.IsAvailable(ctx, ana.ID, june(15))
	if ok {
		t.Error("expected unavailable after SetUnavailable")
	}
}

func TestAvailabilityService_PastDates(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, session := env.createProfile(t, "Ana", models.RolePhotographer, "")

	tests := []struct {
		name    string
		op      func(models.Date) error
		date    models.Date
		wantErr bool
	}{
		{"set yesterday", func(d models.Date) error { return env.availability.SetAvailable(ctx, session, d) }, june(9), true},
		{"unset yesterday", func(d models.Date) error { return env.availability.SetUnavailable(ctx, session, d) }, june(9), true},
		{"set today", func(d models.Date) error { return env.availability.SetAvailable(ctx, session, d) }, june(10), false},
		{"unset today", func(d models.Date) error { return env.availability.SetUnavailable(ctx, session, d) }, june(10), false},
		{"set zero date", func(d models.Date) error { return env.availability.SetAvailable(ctx, session, d) }, models.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(tt.date)
			var verr *ValidationError
			if tt.wantErr && !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAvailabilityService_AdminCannotToggle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")

	if err := env.availability.SetAvailable(ctx, admin, june(15)); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := env.availability.SetAvailable(ctx, nil, june(15)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAvailabilityService_Toggle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	ana, session := env.createProfile(t, "Ana", models.RolePhotographer, "")

	for _, want := range []bool{true, false, true} {
		got, err := env.availability.Toggle(ctx, session, june(20))
		if err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if got != want {
			t.Fatalf("Toggle = %v, want %v", got, want)
		}
		ok, _ := env.availability.IsAvailable(ctx, ana.ID, june(20))
		if ok != want {
			t.Fatalf("IsAvailable = %v after toggle, want %v", ok, want)
		}
	}
}

func TestAvailabilityService_ListRangeValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, session := env.createProfile(t, "Ana", models.RolePhotographer, "")

	tests := []struct {
		name     string
		from, to models.Date
	}{
		{"reversed", june(20), june(10)},
		{"missing end", june(10), models.Date{}},
		{"too long", june(1), june(1).AddDays(400)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.availability.ListRange(ctx, session, tt.from, tt.to)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAvailabilityService_EligiblePhotographers(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	admin, _ := env.createProfile(t, "Admin", models.RoleAdmin, "")
	_, zoe := env.createProfile(t, "Zoe", models.RolePhotographer, "")
	_, ana := env.createProfile(t, "Ana", models.RolePhotographer, "")
	_, bea := env.createProfile(t, "Bea", models.RolePhotographer, "")

	_ = env.availability.SetAvailable(ctx, zoe, june(15))
	_ = env.availability.SetAvailable(ctx, ana, june(15))
	_ = env.availability.SetAvailable(ctx, bea, june(16))

	// An admin row in the ledger must not make them eligible.
	if err := env.store.Availability.Add(ctx, &models.Availability{
		ID: "admin-row", UserID: admin.ID, AvailableDate: june(15), CreatedAt: fixedNow,
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	eligible, err := env.availability.EligiblePhotographers(ctx, june(15))
	if err != nil {
		t.Fatalf("EligiblePhotographers failed: %v", err)
	}
	var names []string
	for _, p := range eligible {
		names = append(names, p.Name)
	}
	if len(names) != 2 || names[0] != "Ana" || names[1] != "Zoe" {
		t.Errorf("expected [Ana Zoe], got %v", names)
	}

	none, err := env.availability.EligiblePhotographers(ctx, june(17))
	if err != nil {
		t.Fatalf("EligiblePhotographers failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no one available, got %d", len(none))
	}
}

func TestAvailabilityService_TodayUsesTimezone(t *testing.T) {
	env := setupEnv(t)

	loc := fixedZone(t, "Pacific/Kiritimati", 14)
	env.availability.loc = loc

	// 10:00 UTC is 00:00 on June 11 in UTC+14.
	if got := env.availability.Today(); !got.Equal(june(11)) {
		t.Errorf("Today = %s, want 2024-06-11", got)
	}
}
