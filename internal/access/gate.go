// Package access decides which views and actions a role may reach.
package access

import "shootdesk-backend/internal/models"

// View is a top-level screen of the application
type View string

const (
	ViewAuth         View = "auth"
	ViewAdmin        View = "admin"
	ViewPhotographer View = "photographer"
)

// Path returns the route serving the view
func (v View) Path() string {
	return "/" + string(v)
}

// Action is a gated operation
type Action string

const (
	ActionCreateShoot        Action = "create_shoot"
	ActionListAllShoots      Action = "list_all_shoots"
	ActionViewInvoice        Action = "view_invoice"
	ActionApproveShoot       Action = "approve_shoot"
	ActionViewStats          Action = "view_stats"
	ActionListPhotographers  Action = "list_photographers"
	ActionViewOwnShoots      Action = "view_own_shoots"
	ActionToggleAvailability Action = "toggle_availability"
	ActionAdvanceShoot       Action = "advance_shoot"
	ActionSubmitDeliverables Action = "submit_deliverables"
	ActionRequestUpload      Action = "request_upload"
)

// Allowed reports whether role may perform action
func Allowed(role models.Role, action Action) bool {
	switch role {
	case models.RoleAdmin:
		switch action {
		case ActionCreateShoot, ActionListAllShoots, ActionViewInvoice,
			ActionApproveShoot, ActionViewStats, ActionListPhotographers:
			return true
		}
	case models.RolePhotographer:
		switch action {
		case ActionViewOwnShoots, ActionToggleAvailability, ActionAdvanceShoot,
			ActionSubmitDeliverables, ActionRequestUpload:
			return true
		}
	}
	return false
}

// HomeView returns the dashboard matching a role
func HomeView(role models.Role) View {
	switch role {
	case models.RoleAdmin:
		return ViewAdmin
	case models.RolePhotographer:
		return ViewPhotographer
	}
	return ViewAuth
}

// Decision is the outcome of resolving a requested view
type Decision struct {
	Allow      bool
	RedirectTo View
}

// ResolveView decides whether a caller with the given role (nil when signed out)
// may see the requested view, and where to send them otherwise.
func ResolveView(role *models.Role, requested View) Decision {
	if role == nil {
		if requested == ViewAuth {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: ViewAuth}
	}

	home := HomeView(*role)
	if home == ViewAuth {
		if requested == ViewAuth {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: ViewAuth}
	}
	if requested == home {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: home}
}

