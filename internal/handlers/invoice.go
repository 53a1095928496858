package handlers

import (
	"net/http"

	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/services"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	today          func() models.Date
}

// NewInvoiceHandler creates a new invoice handler. today picks the default month.
func NewInvoiceHandler(invoiceService *services.InvoiceService, today func() models.Date) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		today:          today,
	}
}

// GetInvoice handles GET /api/v1/invoices?month=YYYY-MM or ?from=&to=
// Without parameters it covers the current month.
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var start, end models.Date
	switch {
	case query.Get("month") != "":
		var err error
		start, end, err = models.ParseMonth(query.Get("month"))
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "month"})
			return
		}
	case query.Get("from") != "" || query.Get("to") != "":
		var ok bool
		if start, ok = parseDateParam(w, "from", query.Get("from")); !ok {
			return
		}
		if end, ok = parseDateParam(w, "to", query.Get("to")); !ok {
			return
		}
	default:
		today := h.today().Time()
		start, end = models.MonthBounds(today.Year(), today.Month())
	}

	invoice, err := h.invoiceService.Compute(r.Context(), middleware.GetSession(r.Context()), start, end)
	if err != nil {
		respondServiceError(w, r, err, "compute invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
