package handlers

import (
	"net/http"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/models"
)

// DashboardHandler serves the role-gated entry views
type DashboardHandler struct{}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// ViewResponse describes the view a caller may open
type ViewResponse struct {
	View    access.View  `json:"view"`
	Role    *models.Role `json:"role,omitempty"`
	Name    string       `json:"name,omitempty"`
	Actions []string     `json:"actions,omitempty"`
}

var allActions = []access.Action{
	access.ActionCreateShoot,
	access.ActionListAllShoots,
	access.ActionViewInvoice,
	access.ActionApproveShoot,
	access.ActionViewStats,
	access.ActionListPhotographers,
	access.ActionViewOwnShoots,
	access.ActionToggleAvailability,
	access.ActionAdvanceShoot,
	access.ActionSubmitDeliverables,
	access.ActionRequestUpload,
}

// Root handles GET / by sending the caller to their home view
func (h *DashboardHandler) Root(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	target := access.ViewAuth
	if session != nil {
		target = access.HomeView(session.Role)
	}
	http.Redirect(w, r, target.Path(), http.StatusFound)
}

// View returns the handler for GET /{view}
func (h *DashboardHandler) View(requested access.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middleware.GetSession(r.Context())

		var role *models.Role
		if session != nil {
			role = &session.Role
		}

		decision := access.ResolveView(role, requested)
		if !decision.Allow {
			http.Redirect(w, r, decision.RedirectTo.Path(), http.StatusFound)
			return
		}

		resp := ViewResponse{View: requested, Role: role}
		if session != nil {
			resp.Name = session.Name
			for _, action := range allActions {
				if access.Allowed(session.Role, action) {
					resp.Actions = append(resp.Actions, string(action))
				}
			}
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
