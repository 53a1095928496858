package handlers

import (
	"net/http"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles every HTTP handler served by the router
type Handlers struct {
	Auth         *AuthHandler
	Shoots       *ShootHandler
	Availability *AvailabilityHandler
	Invoices     *InvoiceHandler
	Uploads      *UploadHandler
	Dashboard    *DashboardHandler
	WebSocket    *WebSocketHandler
}

// NewRouter builds the chi router with all API, view and realtime routes
func NewRouter(auth middleware.Authenticator, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Resolve(auth))
		r.Get("/", h.Dashboard.Root)
		r.Get(access.ViewAuth.Path(), h.Dashboard.View(access.ViewAuth))
		r.Get(access.ViewAdmin.Path(), h.Dashboard.View(access.ViewAdmin))
		r.Get(access.ViewPhotographer.Path(), h.Dashboard.View(access.ViewPhotographer))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", h.Auth.SignUp)
		r.Post("/auth/signin", h.Auth.SignIn)
		r.Post("/auth/password-reset", h.Auth.RequestPasswordReset)
		r.Post("/auth/password-reset/confirm", h.Auth.ConfirmPasswordReset)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(auth))

			r.Post("/auth/signout", h.Auth.SignOut)
			r.Get("/me", h.Auth.Me)
			r.Put("/me/push-token", h.Auth.UpdatePushToken)
			r.Get("/shoots/{id}", h.Shoots.GetShoot)

			r.With(middleware.RequireAction(access.ActionViewOwnShoots)).Get("/me/shoots", h.Shoots.MyShoots)
			r.Route("/me/availability", func(r chi.Router) {
				r.Use(middleware.RequireAction(access.ActionToggleAvailability))
				r.Get("/", h.Availability.ListAvailability)
				r.Put("/{date}", h.Availability.SetAvailable)
				r.Delete("/{date}", h.Availability.SetUnavailable)
				r.Post("/{date}/toggle", h.Availability.ToggleAvailability)
			})
			r.With(middleware.RequireAction(access.ActionAdvanceShoot)).Post("/shoots/{id}/advance", h.Shoots.AdvanceShoot)
			r.With(middleware.RequireAction(access.ActionSubmitDeliverables)).Post("/shoots/{id}/deliverables", h.Shoots.SubmitDeliverables)
			r.With(middleware.RequireAction(access.ActionRequestUpload)).Post("/shoots/{id}/uploads", h.Uploads.GetUploadURL)

			r.With(middleware.RequireAction(access.ActionListAllShoots)).Get("/shoots", h.Shoots.ListShoots)
			r.With(middleware.RequireAction(access.ActionCreateShoot)).Post("/shoots", h.Shoots.CreateShoot)
			r.With(middleware.RequireAction(access.ActionApproveShoot)).Post("/shoots/{id}/approve", h.Shoots.ApproveShoot)
			r.With(middleware.RequireAction(access.ActionListPhotographers)).Get("/photographers", h.Shoots.ListPhotographers)
			r.With(middleware.RequireAction(access.ActionViewInvoice)).Get("/invoices", h.Invoices.GetInvoice)
			r.With(middleware.RequireAction(access.ActionViewStats)).Get("/stats", h.Shoots.Stats)
		})
	})

	// WebSocket route
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
