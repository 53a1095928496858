package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestShootStatus_NextWalksWholeWorkflow(t *testing.T) {
	statuses := AllStatuses()
	if len(statuses) != 7 {
		t.Fatalf("len(AllStatuses()) = %d, want 7", len(statuses))
	}

	for i, s := range statuses {
		if s.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", s, s.Index(), i)
		}
		next, ok := s.Next()
		if i == len(statuses)-1 {
			if ok {
				t.Errorf("%s.Next() = %s, want no successor", s, next)
			}
			continue
		}
		if !ok || next != statuses[i+1] {
			t.Errorf("%s.Next() = (%s, %v), want (%s, true)", s, next, ok, statuses[i+1])
		}
	}
}

func TestShootStatus_Classification(t *testing.T) {
	tests := []struct {
		status  ShootStatus
		pending bool
		done    bool
		label   string
	}{
		{StatusAssigned, true, false, "Assigned"},
		{StatusAccepted, true, false, "Accepted"},
		{StatusReached, true, false, "Reached"},
		{StatusStarted, true, false, "Started"},
		{StatusCompleted, false, true, "Completed"},
		{StatusQCUploaded, false, true, "QC Uploaded"},
		{StatusApproved, false, true, "Approved"},
		{ShootStatus("Cancelled"), false, false, "Cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsPending(); got != tt.pending {
				t.Errorf("IsPending() = %v, want %v", got, tt.pending)
			}
			if got := tt.status.IsDone(); got != tt.done {
				t.Errorf("IsDone() = %v, want %v", got, tt.done)
			}
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestShootStatus_UnknownIsInvalid(t *testing.T) {
	s := ShootStatus("Cancelled")
	if s.Valid() {
		t.Error("Valid() = true, want false")
	}
	if _, ok := s.Next(); ok {
		t.Error("Next() ok = true, want false")
	}
}

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleAdmin, true},
		{RolePhotographer, true},
		{Role(""), false},
		{Role("Admin"), false},
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.valid {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.valid)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	if d.String() != "2024-06-10" {
		t.Errorf("String() = %q, want 2024-06-10", d.String())
	}

	for _, bad := range []string{"", "10/06/2024", "2024-13-01", "2024-06-10T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDate_Comparisons(t *testing.T) {
	a := NewDate(2024, time.June, 10)
	b := a.AddDays(1)

	if !a.Before(b) || b.Before(a) {
		t.Error("Before() ordering is wrong")
	}
	if !b.After(a) {
		t.Error("After() ordering is wrong")
	}
	if !a.Equal(NewDate(2024, time.June, 10)) {
		t.Error("Equal() = false for same day")
	}
	if a.Before(a) {
		t.Error("a date is not strictly before itself")
	}
}

func TestDateOf_UsesLocationDay(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2024, time.June, 9, 20, 0, 0, 0, time.UTC).In(kolkata)

	if got := DateOf(instant).String(); got != "2024-06-10" {
		t.Errorf("DateOf() = %q, want 2024-06-10", got)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		month     string
		wantStart string
		wantEnd   string
	}{
		{"2024-06", "2024-06-01", "2024-06-30"},
		{"2024-02", "2024-02-01", "2024-02-29"},
		{"2023-12", "2023-12-01", "2023-12-31"},
	}
	for _, tt := range tests {
		start, end, err := ParseMonth(tt.month)
		if err != nil {
			t.Fatalf("ParseMonth(%q) error: %v", tt.month, err)
		}
		if start.String() != tt.wantStart || end.String() != tt.wantEnd {
			t.Errorf("ParseMonth(%q) = %s..%s, want %s..%s", tt.month, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Day Date `json:"day"`
	}
	if err := json.Unmarshal([]byte(`{"day":"2024-06-10"}`), &payload); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if payload.Day.String() != "2024-06-10" {
		t.Errorf("Day = %s, want 2024-06-10", payload.Day)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(out) != `{"day":"2024-06-10"}` {
		t.Errorf("Marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"day":"June 10"}`), &payload); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseShootTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"14:30", "14:30", false},
		{"09:05:00", "09:05", false},
		{"25:00", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseShootTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShootTime(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseShootTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShoot_AssignedTo(t *testing.T) {
	p := "p1"
	s := &Shoot{PhotographerID: &p}
	if !s.AssignedTo("p1") {
		t.Error("AssignedTo(p1) = false")
	}
	if s.AssignedTo("p2") {
		t.Error("AssignedTo(p2) = true")
	}
	if (&Shoot{}).AssignedTo("p1") {
		t.Error("unassigned shoot reported as assigned")
	}
}
