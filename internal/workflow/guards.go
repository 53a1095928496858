// Package workflow contains the shoot status transition rules.
// Guards are pure functions that evaluate preconditions without side effects.
package workflow

import (
	"fmt"
	"math"
	"strings"

	"shootdesk-backend/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Invalid marks a rejection caused by the caller's input.
	Invalid bool
	// OutOfOrder marks a rejection caused by the shoot's current status.
	OutOfOrder bool
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Invalid: true, Reason: fmt.Sprintf(format, args...)}
}

func outOfOrder(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, OutOfOrder: true, Reason: fmt.Sprintf(format, args...)}
}

// CreateContext provides context for shoot creation guards.
type CreateContext struct {
	ActorRole        models.Role
	MerchantName     string
	Location         string
	PhotographerID   string // empty when unassigned
	PhotographerRole models.Role
	PhotographerOK   bool // photographer exists and is available on the shoot date
}

// AdvanceContext provides context for photographer-driven transitions.
type AdvanceContext struct {
	ShootID        string
	Status         models.ShootStatus
	PhotographerID string // empty when unassigned
	ActorID        string
	ActorRole      models.Role
}

// DeliverablesContext provides context for deliverable submission guards.
type DeliverablesContext struct {
	ShootID        string
	Status         models.ShootStatus
	PhotographerID string
	ActorID        string
	ActorRole      models.Role
	QCLink         string
	RawLink        string
}

// ApproveContext provides context for approval guards.
type ApproveContext struct {
	ShootID   string
	Status    models.ShootStatus
	ActorRole models.Role
	Payout    float64
}

// CanCreate evaluates whether a shoot can be created.
// Rules:
// - Actor must be an admin
// - Merchant name and location must be non-empty
// - A pre-assigned photographer must have the photographer role and be available
func CanCreate(ctx CreateContext) GuardResult {
	if ctx.ActorRole != models.RoleAdmin {
		return deny("only admins can create shoots")
	}
	if strings.TrimSpace(ctx.MerchantName) == "" {
		return invalid("merchant name is required")
	}
	if strings.TrimSpace(ctx.Location) == "" {
		return invalid("location is required")
	}
	if ctx.PhotographerID != "" {
		if ctx.PhotographerRole != models.RolePhotographer {
			return invalid("profile %s is not a photographer", ctx.PhotographerID)
		}
		if !ctx.PhotographerOK {
			return invalid("photographer %s is not available on the shoot date", ctx.PhotographerID)
		}
	}
	return allow()
}

// CanAdvance evaluates whether the actor can move a shoot to its next state.
// Rules:
// - Actor must be the assigned photographer
// - Status must be Assigned, Accepted, Reached or Started
func CanAdvance(ctx AdvanceContext) GuardResult {
	if ctx.ActorRole != models.RolePhotographer {
		return deny("only the assigned photographer can update shoot %s", ctx.ShootID)
	}
	if ctx.PhotographerID == "" || ctx.PhotographerID != ctx.ActorID {
		return deny("shoot %s is not assigned to you", ctx.ShootID)
	}
	if !ctx.Status.IsPending() {
		return outOfOrder("cannot advance shoot %s from status %s", ctx.ShootID, ctx.Status)
	}
	return allow()
}

// NextStatus returns the state CanAdvance moves a shoot into.
func NextStatus(current models.ShootStatus) (models.ShootStatus, bool) {
	if !current.IsPending() {
		return "", false
	}
	return current.Next()
}

// CanSubmitDeliverables evaluates whether deliverable links can be submitted.
// Rules:
// - Actor must be the assigned photographer
// - Status must be Completed
// - At least one of the QC and raw links must be non-empty
func CanSubmitDeliverables(ctx DeliverablesContext) GuardResult {
	if ctx.ActorRole != models.RolePhotographer || ctx.PhotographerID == "" || ctx.PhotographerID != ctx.ActorID {
		return deny("shoot %s is not assigned to you", ctx.ShootID)
	}
	if ctx.Status != models.StatusCompleted {
		return outOfOrder("deliverables can only be submitted for completed shoots (current status: %s)", ctx.Status)
	}
	if strings.TrimSpace(ctx.QCLink) == "" && strings.TrimSpace(ctx.RawLink) == "" {
		return invalid("please provide at least one link")
	}
	return allow()
}

// CanApprove evaluates whether an admin can approve a shoot with a payout.
// Rules:
// - Actor must be an admin
// - Status must be QC_Uploaded
// - Payout must be a finite number greater than zero
func CanApprove(ctx ApproveContext) GuardResult {
	if ctx.ActorRole != models.RoleAdmin {
		return deny("only admins can approve shoots")
	}
	if ctx.Status != models.StatusQCUploaded {
		return outOfOrder("can only approve shoots with uploaded QC (current status: %s)", ctx.Status)
	}
	if math.IsNaN(ctx.Payout) || math.IsInf(ctx.Payout, 0) || ctx.Payout <= 0 {
		return invalid("payout must be a positive number")
	}
	return allow()
}
