package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ShootHandler handles shoot-related HTTP requests
type ShootHandler struct {
	shootService *services.ShootService
}

// NewShootHandler creates a new shoot handler
func NewShootHandler(shootService *services.ShootService) *ShootHandler {
	return &ShootHandler{
		shootService: shootService,
	}
}

// DeliverablesRequest represents the request body for submitting deliverables
type DeliverablesRequest struct {
	QCLink  string `json:"qc_link"`
	RawLink string `json:"raw_link"`
}

// ApproveRequest represents the request body for approving a shoot.
// Payout accepts a JSON number or a numeric string.
type ApproveRequest struct {
	Payout json.RawMessage `json:"payout"`
}

// CreateShoot handles POST /api/v1/shoots
func (h *ShootHandler) CreateShoot(w http.ResponseWriter, r *http.Request) {
	var req services.CreateShootInput
	if !decodeJSON(w, r, &req) {
		return
	}

	shoot, err := h.shootService.Create(r.Context(), middleware.GetSession(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "create shoot")
		return
	}

	respondJSON(w, http.StatusCreated, shoot)
}

// ListShoots handles GET /api/v1/shoots
func (h *ShootHandler) ListShoots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, ok := parseDateParam(w, "from", query.Get("from"))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, "to", query.Get("to"))
	if !ok {
		return
	}

	filter := services.ShootListFilter{From: from, To: to}
	if raw := query.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.ShootStatus(strings.TrimSpace(s))
			if !status.Valid() {
				respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown status " + string(status), Field: "status"})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	shoots, err := h.shootService.ListAll(r.Context(), middleware.GetSession(r.Context()), filter)
	if err != nil {
		respondServiceError(w, r, err, "list shoots")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"shoots": shoots})
}

// GetShoot handles GET /api/v1/shoots/{id}
func (h *ShootHandler) GetShoot(w http.ResponseWriter, r *http.Request) {
	shoot, err := h.shootService.Get(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get shoot")
		return
	}

	respondJSON(w, http.StatusOK, shoot)
}

// MyShoots handles GET /api/v1/me/shoots
func (h *ShootHandler) MyShoots(w http.ResponseWriter, r *http.Request) {
	shoots, err := h.shootService.ListForPhotographer(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "list shoots")
		return
	}

	respondJSON(w, http.StatusOK, shoots)
}

// AdvanceShoot handles POST /api/v1/shoots/{id}/advance
func (h *ShootHandler) AdvanceShoot(w http.ResponseWriter, r *http.Request) {
	shoot, err := h.shootService.Advance(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "update shoot")
		return
	}

	respondJSON(w, http.StatusOK, shoot)
}

// SubmitDeliverables handles POST /api/v1/shoots/{id}/deliverables
func (h *ShootHandler) SubmitDeliverables(w http.ResponseWriter, r *http.Request) {
	var req DeliverablesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	shoot, err := h.shootService.SubmitDeliverables(
		r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "id"), req.QCLink, req.RawLink,
	)
	if err != nil {
		respondServiceError(w, r, err, "submit deliverables")
		return
	}

	respondJSON(w, http.StatusOK, shoot)
}

// ApproveShoot handles POST /api/v1/shoots/{id}/approve
func (h *ShootHandler) ApproveShoot(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payout, err := services.ParsePayout(strings.Trim(string(req.Payout), `"`))
	if err != nil {
		respondServiceError(w, r, err, "approve shoot")
		return
	}

	shoot, err := h.shootService.Approve(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "id"), payout)
	if err != nil {
		respondServiceError(w, r, err, "approve shoot")
		return
	}

	respondJSON(w, http.StatusOK, shoot)
}

// Stats handles GET /api/v1/stats
func (h *ShootHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.shootService.Stats(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "load stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ListPhotographers handles GET /api/v1/photographers
func (h *ShootHandler) ListPhotographers(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, "available_on", r.URL.Query().Get("available_on"))
	if !ok {
		return
	}

	photographers, err := h.shootService.ListPhotographers(r.Context(), middleware.GetSession(r.Context()), date)
	if err != nil {
		respondServiceError(w, r, err, "list photographers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"photographers": photographers})
}
