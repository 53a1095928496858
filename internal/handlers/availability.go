package handlers

import (
	"net/http"

	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// AvailabilityHandler handles availability HTTP requests
type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
	}
}

// AvailabilityResponse reports the state of one day
type AvailabilityResponse struct {
	Date      models.Date `json:"date"`
	Available bool        `json:"available"`
}

// ListAvailability handles GET /api/v1/me/availability?from=&to=
// Without a range it returns the next 30 days.
func (h *AvailabilityHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, ok := parseDateParam(w, "from", query.Get("from"))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, "to", query.Get("to"))
	if !ok {
		return
	}
	if from.IsZero() {
		from = h.availabilityService.Today()
	}
	if to.IsZero() {
		to = from.AddDays(30)
	}

	list, err := h.availabilityService.ListRange(r.Context(), middleware.GetSession(r.Context()), from, to)
	if err != nil {
		respondServiceError(w, r, err, "list availability")
		return
	}

	dates := make([]models.Date, 0, len(list))
	for _, a := range list {
		dates = append(dates, a.AvailableDate)
	}

	respondJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "dates": dates})
}

// SetAvailable handles PUT /api/v1/me/availability/{date}
func (h *AvailabilityHandler) SetAvailable(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	if err := h.availabilityService.SetAvailable(r.Context(), middleware.GetSession(r.Context()), date); err != nil {
		respondServiceError(w, r, err, "update availability")
		return
	}

	respondJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Available: true})
}

// SetUnavailable handles DELETE /api/v1/me/availability/{date}
func (h *AvailabilityHandler) SetUnavailable(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	if err := h.availabilityService.SetUnavailable(r.Context(), middleware.GetSession(r.Context()), date); err != nil {
		respondServiceError(w, r, err, "update availability")
		return
	}

	respondJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Available: false})
}

// ToggleAvailability handles POST /api/v1/me/availability/{date}/toggle
func (h *AvailabilityHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	available, err := h.availabilityService.Toggle(r.Context(), middleware.GetSession(r.Context()), date)
	if err != nil {
		respondServiceError(w, r, err, "update availability")
		return
	}

	respondJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Available: available})
}

func (h *AvailabilityHandler) pathDate(w http.ResponseWriter, r *http.Request) (models.Date, bool) {
	raw := chi.URLParam(r, "date")
	if raw == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date is required", Field: "date"})
		return models.Date{}, false
	}
	return parseDateParam(w, "date", raw)
}
