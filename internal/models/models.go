package models

import "time"

// Role is one of the two fixed account roles
type Role string

const (
	RoleAdmin        Role = "admin"
	RolePhotographer Role = "photographer"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePhotographer:
		return true
	}
	return false
}

// Profile represents a signed-up user
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential holds the sign-in secret for a profile
type Credential struct {
	ProfileID    string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Availability marks a photographer as available on a date
type Availability struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AvailableDate Date      `json:"available_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// Shoot represents a scheduled photography engagement
type Shoot struct {
	ID             string      `json:"id"`
	MerchantName   string      `json:"merchant_name"`
	Location       string      `json:"location"`
	ShootDate      Date        `json:"shoot_date"`
	ShootTime      string      `json:"shoot_time"`
	PhotographerID *string     `json:"photographer_id"`
	Status         ShootStatus `json:"status"`
	QCLink         *string     `json:"qc_link"`
	RawLink        *string     `json:"raw_link"`
	Payout         *float64    `json:"payout"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Photographer *Profile `json:"photographer,omitempty"`
}

// AssignedTo reports whether the shoot is assigned to the given profile
func (s *Shoot) AssignedTo(profileID string) bool {
	return s.PhotographerID != nil && *s.PhotographerID == profileID
}

// InvoiceLine is the per-photographer row of an invoice.
// TotalPayout is the flat-rate figure; ApprovedPayoutTotal sums the amounts
// entered by admins on approval and is reported separately.
type InvoiceLine struct {
	Photographer        Profile `json:"photographer"`
	ShootCount          int     `json:"shoot_count"`
	TotalPayout         int64   `json:"total_payout"`
	ApprovedCount       int     `json:"approved_count"`
	ApprovedPayoutTotal float64 `json:"approved_payout_total"`
}

// Invoice aggregates completed shoots for a period
type Invoice struct {
	PeriodStart  Date          `json:"period_start"`
	PeriodEnd    Date          `json:"period_end"`
	RatePerShoot int64         `json:"rate_per_shoot"`
	Lines        []InvoiceLine `json:"lines"`
	TotalShoots  int           `json:"total_shoots"`
	TotalPayout  int64         `json:"total_payout"`
}

// DashboardStats are the counters shown on the admin dashboard
type DashboardStats struct {
	TotalShoots     int `json:"total_shoots"`
	CompletedShoots int `json:"completed_shoots"`
	PendingShoots   int `json:"pending_shoots"`
	Photographers   int `json:"photographers"`
}

// LineFor returns the invoice line of a photographer
func (inv *Invoice) LineFor(photographerID string) (InvoiceLine, bool) {
	for _, line := range inv.Lines {
		if line.Photographer.ID == photographerID {
			return line, true
		}
	}
	return InvoiceLine{}, false
}
