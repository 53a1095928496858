package handlers

import (
	"net/http"

	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// UploadHandler handles deliverable upload HTTP requests
type UploadHandler struct {
	deliverableService *services.DeliverableService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(deliverableService *services.DeliverableService) *UploadHandler {
	return &UploadHandler{
		deliverableService: deliverableService,
	}
}

// GetUploadURL handles POST /api/v1/shoots/{id}/uploads
func (h *UploadHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.deliverableService.RequestUpload(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "generate upload URL")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
