package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/notify"
)

func TestShootService_FullWorkflow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	photographer, ps := env.createProfile(t, "Ana", models.RolePhotographer, "+15551111")

	if err := env.availability.SetAvailable(ctx, ps, june(10)); err != nil {
		t.Fatalf("SetAvailable failed: %v", err)
	}

	shoot, err := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName:   "Cafe Blue",
		Location:       "12 Main St",
		ShootDate:      june(10),
		ShootTime:      "14:00",
		PhotographerID: photographer.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if shoot.Status != models.StatusAssigned {
		t.Fatalf("expected Assigned, got %s", shoot.Status)
	}

	want := []models.ShootStatus{models.StatusAccepted, models.StatusReached, models.StatusStarted, models.StatusCompleted}
	for _, status := range want {
		shoot, err = env.shoots.Advance(ctx, ps, shoot.ID)
		if err != nil {
			t.Fatalf("Advance to %s failed: %v", status, err)
		}
		if shoot.Status != status {
			t.Fatalf("expected %s, got %s", status, shoot.Status)
		}
	}

	shoot, err = env.shoots.SubmitDeliverables(ctx, ps, shoot.ID, "https://qc.example.com/1", "")
	if err != nil {
		t.Fatalf("SubmitDeliverables failed: %v", err)
	}
	if shoot.Status != models.StatusQCUploaded || shoot.QCLink == nil || shoot.RawLink != nil {
		t.Fatalf("unexpected shoot after deliverables: %+v", shoot)
	}

	payout, err := ParsePayout("750")
	if err != nil {
		t.Fatalf("ParsePayout failed: %v", err)
	}
	shoot, err = env.shoots.Approve(ctx, admin, shoot.ID, payout)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if shoot.Status != models.StatusApproved || shoot.Payout == nil || *shoot.Payout != 750 {
		t.Fatalf("unexpected shoot after approval: %+v", shoot)
	}

	invoice, err := env.invoices.ComputeMonth(ctx, admin, 2024, time.June)
	if err != nil {
		t.Fatalf("ComputeMonth failed: %v", err)
	}
	line, ok := invoice.LineFor(photographer.ID)
	if !ok {
		t.Fatalf("expected an invoice line for %s", photographer.ID)
	}
	if line.ShootCount != 1 || line.TotalPayout != 500 {
		t.Errorf("expected 1 shoot and 500 payout, got %d and %d", line.ShootCount, line.TotalPayout)
	}
	if line.ApprovedPayoutTotal != 750 {
		t.Errorf("expected approved payout 750, got %v", line.ApprovedPayoutTotal)
	}

	stored, err := env.shoots.Get(ctx, admin, shoot.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *stored.Payout != 750 {
		t.Errorf("expected stored payout 750, got %v", *stored.Payout)
	}

	env.shoots.Wait()
	messages := env.sender.messages()
	expected := []sentMessage{
		{To: "+15551111", Body: "New Shoot assigned at 12 Main St on June 10, 2024. Log in to accept.", Category: notify.CategoryShootAssigned},
		{To: adminPhone, Body: "Ana has reached Cafe Blue location.", Category: notify.CategoryPhotographerReached},
		{To: adminPhone, Body: "QC Uploaded for Cafe Blue. Review here: https://qc.example.com/1", Category: notify.CategoryQCUploaded},
	}
	if len(messages) != len(expected) {
		t.Fatalf("expected %d messages, got %d: %+v", len(expected), len(messages), messages)
	}
	for _, exp := range expected {
		found := false
		for _, m := range messages {
			if m == exp {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing message %+v in %+v", exp, messages)
		}
	}
}

func TestShootService_NotificationFailureKeepsStatus(t *testing.T) {
	tests := []struct {
		name       string
		sender     notify.Sender
		adminPhone string
		attempts   int
	}{
		{name: "provider failure", sender: &failingSender{}, adminPhone: adminPhone, attempts: 3},
		{name: "no admin phone", sender: &failingSender{}, adminPhone: "", attempts: 1},
		{name: "no admin phone, working provider", sender: &recordingSender{}, adminPhone: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(t)
			env.shoots.dispatcher = notify.NewDispatcher(tt.sender, nil, tt.adminPhone)
			ctx := context.Background()

			_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
			photographer, ps := env.createProfile(t, "Ana", models.RolePhotographer, "+15551111")
			if err := env.availability.SetAvailable(ctx, ps, june(10)); err != nil {
				t.Fatalf("SetAvailable failed: %v", err)
			}

			shoot, err := env.shoots.Create(ctx, admin, CreateShootInput{
				MerchantName: "Cafe Blue", Location: "12 Main St", ShootDate: june(10), ShootTime: "14:00",
				PhotographerID: photographer.ID,
			})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			assertStatus := func(got *models.Shoot, want models.ShootStatus) {
				t.Helper()
				if got.Status != want {
					t.Fatalf("expected returned status %s, got %s", want, got.Status)
				}
				stored, err := env.store.Shoots.GetByID(ctx, shoot.ID)
				if err != nil {
					t.Fatalf("GetByID failed: %v", err)
				}
				if stored.Status != want {
					t.Fatalf("expected stored status %s, got %s", want, stored.Status)
				}
			}

			for _, want := range []models.ShootStatus{models.StatusAccepted, models.StatusReached} {
				shoot, err = env.shoots.Advance(ctx, ps, shoot.ID)
				if err != nil {
					t.Fatalf("Advance to %s failed: %v", want, err)
				}
				assertStatus(shoot, want)
			}
			for _, want := range []models.ShootStatus{models.StatusStarted, models.StatusCompleted} {
				if shoot, err = env.shoots.Advance(ctx, ps, shoot.ID); err != nil {
					t.Fatalf("Advance to %s failed: %v", want, err)
				}
			}

			shoot, err = env.shoots.SubmitDeliverables(ctx, ps, shoot.ID, "https://qc.example.com/1", "")
			if err != nil {
				t.Fatalf("SubmitDeliverables failed: %v", err)
			}
			assertStatus(shoot, models.StatusQCUploaded)

			env.shoots.Wait()
			if f, ok := tt.sender.(*failingSender); ok && f.attempts() != tt.attempts {
				t.Errorf("expected %d delivery attempts, got %d", tt.attempts, f.attempts())
			}
			if r, ok := tt.sender.(*recordingSender); ok {
				for _, m := range r.messages() {
					if m.Category != notify.CategoryShootAssigned {
						t.Errorf("unexpected admin message without admin phone: %+v", m)
					}
				}
			}
			assertStatus(shoot, models.StatusQCUploaded)
		})
	}
}

func TestShootService_CreateRequiresAvailablePhotographer(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	photographer, ps := env.createProfile(t, "Ana", models.RolePhotographer, "")

	if err := env.availability.SetAvailable(ctx, ps, june(11)); err != nil {
		t.Fatalf("SetAvailable failed: %v", err)
	}

	_, err := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00",
		PhotographerID: photographer.ID,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	shoots, _ := env.shoots.ListAll(ctx, admin, ShootListFilter{})
	if len(shoots) != 0 {
		t.Errorf("expected nothing written, got %d shoots", len(shoots))
	}
}

func TestShootService_CreateValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	_, ps := env.createProfile(t, "Ana", models.RolePhotographer, "")
	otherAdmin, _ := env.createProfile(t, "Boss", models.RoleAdmin, "")

	valid := CreateShootInput{MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00"}

	tests := []struct {
		name      string
		session   *Session
		mutate    func(in *CreateShootInput)
		wantValid bool
		wantForb  bool
	}{
		{name: "unassigned shoot is fine", session: admin, mutate: func(*CreateShootInput) {}},
		{name: "photographer cannot create", session: ps, mutate: func(*CreateShootInput) {}, wantForb: true},
		{name: "missing merchant", session: admin, mutate: func(in *CreateShootInput) { in.MerchantName = "  " }, wantValid: true},
		{name: "missing location", session: admin, mutate: func(in *CreateShootInput) { in.Location = "" }, wantValid: true},
		{name: "missing date", session: admin, mutate: func(in *CreateShootInput) { in.ShootDate = models.Date{} }, wantValid: true},
		{name: "bad time", session: admin, mutate: func(in *CreateShootInput) { in.ShootTime = "25:99" }, wantValid: true},
		{name: "unknown photographer", session: admin, mutate: func(in *CreateShootInput) { in.PhotographerID = "nobody" }, wantValid: true},
		{name: "assignee is an admin", session: admin, mutate: func(in *CreateShootInput) { in.PhotographerID = otherAdmin.ID }, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := env.shoots.Create(ctx, tt.session, in)

			var verr *ValidationError
			switch {
			case tt.wantValid:
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			case tt.wantForb:
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("expected ErrForbidden, got %v", err)
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestShootService_AdvanceRules(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	ana, anaSession := env.createProfile(t, "Ana", models.RolePhotographer, "")
	_, beaSession := env.createProfile(t, "Bea", models.RolePhotographer, "")
	_ = env.availability.SetAvailable(ctx, anaSession, june(12))

	shoot, err := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00", PhotographerID: ana.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := env.shoots.Advance(ctx, beaSession, shoot.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for another photographer, got %v", err)
	}
	if _, err := env.shoots.Advance(ctx, admin, shoot.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for admin, got %v", err)
	}
	if _, err := env.shoots.Advance(ctx, anaSession, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, err := env.shoots.Advance(ctx, anaSession, shoot.ID); err != nil {
			t.Fatalf("Advance #%d failed: %v", i, err)
		}
	}

	_, err = env.shoots.Advance(ctx, anaSession, shoot.ID)
	var terr *TransitionError
	if !errors.As(err, &terr) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected TransitionError from Completed, got %v", err)
	}

	if _, err := env.shoots.Approve(ctx, admin, shoot.ID, 500); !errors.As(err, &terr) {
		t.Errorf("expected TransitionError approving a Completed shoot, got %v", err)
	}

	got, _ := env.shoots.Get(ctx, admin, shoot.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("expected status to stay Completed, got %s", got.Status)
	}
}

func TestShootService_SubmitDeliverablesValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	ana, anaSession := env.createProfile(t, "Ana", models.RolePhotographer, "")
	_ = env.availability.SetAvailable(ctx, anaSession, june(12))

	shoot, _ := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00", PhotographerID: ana.ID,
	})

	var terr *TransitionError
	if _, err := env.shoots.SubmitDeliverables(ctx, anaSession, shoot.ID, "https://qc", ""); !errors.As(err, &terr) {
		t.Errorf("expected TransitionError before completion, got %v", err)
	}

	for i := 0; i < 4; i++ {
		_, _ = env.shoots.Advance(ctx, anaSession, shoot.ID)
	}

	var verr *ValidationError
	if _, err := env.shoots.SubmitDeliverables(ctx, anaSession, shoot.ID, " ", ""); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError without links, got %v", err)
	}

	got, err := env.shoots.SubmitDeliverables(ctx, anaSession, shoot.ID, "", "https://raw")
	if err != nil {
		t.Fatalf("SubmitDeliverables failed: %v", err)
	}
	if got.QCLink != nil || got.RawLink == nil || *got.RawLink != "https://raw" {
		t.Errorf("unexpected links: qc=%v raw=%v", got.QCLink, got.RawLink)
	}

	env.shoots.Wait()
	for _, m := range env.sender.messages() {
		if m.Category == notify.CategoryQCUploaded {
			t.Errorf("expected no QC notification without a QC link, got %+v", m)
		}
	}
}

func TestShootService_ApproveValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	ana, anaSession := env.createProfile(t, "Ana", models.RolePhotographer, "")
	_ = env.availability.SetAvailable(ctx, anaSession, june(12))

	shoot, _ := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00", PhotographerID: ana.ID,
	})
	for i := 0; i < 4; i++ {
		_, _ = env.shoots.Advance(ctx, anaSession, shoot.ID)
	}
	if _, err := env.shoots.SubmitDeliverables(ctx, anaSession, shoot.ID, "https://qc", ""); err != nil {
		t.Fatalf("SubmitDeliverables failed: %v", err)
	}

	if _, err := env.shoots.Approve(ctx, anaSession, shoot.ID, 500); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for photographer, got %v", err)
	}

	var verr *ValidationError
	for _, payout := range []float64{0, -10} {
		if _, err := env.shoots.Approve(ctx, admin, shoot.ID, payout); !errors.As(err, &verr) {
			t.Errorf("expected ValidationError for payout %v, got %v", payout, err)
		}
	}

	got, _ := env.shoots.Get(ctx, admin, shoot.ID)
	if got.Status != models.StatusQCUploaded || got.Payout != nil {
		t.Errorf("expected shoot untouched after rejected approvals, got %+v", got)
	}
}

func TestParsePayout(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"750", 750, false},
		{" 99.5 ", 99.5, false},
		{"abc", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"12.", 12, false},
		{".5", 0.5, false},
		{"0x1p4", 0, true},
		{"0x10", 0, true},
		{"1_000", 0, true},
		{"1e3", 0, true},
		{"+5", 0, true},
		{"5.0.0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePayout(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePayout(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestShootService_ListForPhotographerAndStats(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	ana, anaSession := env.createProfile(t, "Ana", models.RolePhotographer, "")
	env.createProfile(t, "Bea", models.RolePhotographer, "")
	_ = env.availability.SetAvailable(ctx, anaSession, june(12))

	first, _ := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00", PhotographerID: ana.ID,
	})
	_, _ = env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Diner", Location: "Side St", ShootDate: june(12), ShootTime: "15:00", PhotographerID: ana.ID,
	})
	_, _ = env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Bistro", Location: "Park Ave", ShootDate: june(13), ShootTime: "11:00",
	})
	for i := 0; i < 4; i++ {
		_, _ = env.shoots.Advance(ctx, anaSession, first.ID)
	}

	own, err := env.shoots.ListForPhotographer(ctx, anaSession)
	if err != nil {
		t.Fatalf("ListForPhotographer failed: %v", err)
	}
	if len(own.Active) != 1 || len(own.Completed) != 1 || own.Completed[0].ID != first.ID {
		t.Errorf("unexpected split: active=%d completed=%d", len(own.Active), len(own.Completed))
	}

	if _, err := env.shoots.ListForPhotographer(ctx, admin); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for admin, got %v", err)
	}

	stats, err := env.shoots.Stats(ctx, admin)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := models.DashboardStats{TotalShoots: 3, CompletedShoots: 1, PendingShoots: 2, Photographers: 2}
	if *stats != want {
		t.Errorf("Stats = %+v, want %+v", *stats, want)
	}

	if _, err := env.shoots.Stats(ctx, anaSession); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for photographer, got %v", err)
	}

	all, err := env.shoots.ListAll(ctx, admin, ShootListFilter{})
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 3 || all[0].Photographer == nil || all[2].Photographer != nil {
		t.Errorf("expected three shoots with joined photographers, got %+v", all)
	}
}

func TestShootService_GetVisibility(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	_, beaSession := env.createProfile(t, "Bea", models.RolePhotographer, "")

	shoot, _ := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00",
	})

	if _, err := env.shoots.Get(ctx, beaSession, shoot.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.shoots.Get(ctx, nil, shoot.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestShootService_PublishesEvents(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, admin := env.createProfile(t, "Admin", models.RoleAdmin, "")
	ana, anaSession := env.createProfile(t, "Ana", models.RolePhotographer, "")
	_, beaSession := env.createProfile(t, "Bea", models.RolePhotographer, "")
	_ = env.availability.SetAvailable(ctx, anaSession, june(12))

	adminSub := env.broker.Subscribe(VisibleTo(admin))
	anaSub := env.broker.Subscribe(VisibleTo(anaSession))
	beaSub := env.broker.Subscribe(VisibleTo(beaSession))
	defer env.broker.Unsubscribe(adminSub)
	defer env.broker.Unsubscribe(anaSub)
	defer env.broker.Unsubscribe(beaSub)

	shoot, _ := env.shoots.Create(ctx, admin, CreateShootInput{
		MerchantName: "Cafe", Location: "Main St", ShootDate: june(12), ShootTime: "10:00", PhotographerID: ana.ID,
	})
	_, _ = env.shoots.Advance(ctx, anaSession, shoot.ID)

	for name, sub := range map[string]*Subscription{"admin": adminSub, "ana": anaSub} {
		if len(sub.C) != 2 {
			t.Errorf("%s: expected 2 events, got %d", name, len(sub.C))
			continue
		}
		created := <-sub.C
		updated := <-sub.C
		if created.Type != EventShootCreated || updated.Type != EventShootUpdated {
			t.Errorf("%s: unexpected event order %s, %s", name, created.Type, updated.Type)
		}
		if updated.Shoot.Status != models.StatusAccepted {
			t.Errorf("%s: expected Accepted in event, got %s", name, updated.Shoot.Status)
		}
	}
	if len(beaSub.C) != 0 {
		t.Errorf("expected Bea to see nothing, got %d events", len(beaSub.C))
	}
}
