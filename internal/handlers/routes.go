package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/councilvote/internal/models"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.httpLog != nil && h.httpLog.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// The websocket connection is long-lived and must not sit behind the timeout
	if h.ws != nil {
		r.Get("/ws", h.ws)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if h.staticServer != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		}
		if h.metrics != nil {
			r.Handle("/metrics", h.metrics)
		}

		// Pages
		if h.templates != nil {
			r.Get("/", h.handleIndex)
			r.Get("/login", h.handleLoginPage)
			r.Get("/results", h.handleResultsPage)
			r.With(h.Auth.RequirePage("/login", models.RoleStaff, models.RoleAdmin)).Get("/staff", h.handleStaffPage)
			r.With(h.Auth.RequirePage("/login", models.RoleAdmin)).Get("/admin", h.handleAdminDashboard)
		}

		// Public API
		r.Get("/api/health", h.handleHealth)
		r.Get("/api/public/results", h.handlePublicResults)
		r.Get("/api/public/chart-data", h.handlePublicChartData)
		r.Get("/api/public/audit-feed", h.handleAuditFeed)
		r.Get("/api/public/qr.png", h.handlePublicQR)
		r.Get("/uploads/{filename}", h.handleServeUpload)

		// Auth
		r.Post("/api/auth/login", h.handleLogin)
		r.Post("/api/auth/logout", h.handleLogout)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireStaff)
			r.Get("/api/auth/me", h.handleMe)
			r.Post("/api/auth/heartbeat", h.handleHeartbeat)
		})

		// Staff API (STAFF or ADMIN)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireStaff)

			r.Post("/api/staff/submit", h.handleSubmit)
			r.Get("/api/staff/submissions", h.handleSubmissionStatus)
			r.Post("/api/staff/live-tally", h.handleApplyDelta)
			r.Get("/api/staff/live-tally", h.handleListTallies)
			r.Get("/api/staff/unit-init", h.handleGetUnitInit)
			r.Put("/api/staff/unit-init", h.handleUpdateUnitInit)
			r.Get("/api/staff/candidates", h.handleGetCandidates)
			r.Post("/api/staff/upload", h.handleUpload)
		})

		// Admin API
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)

			// Results & audit
			r.Get("/api/admin/results", h.handleAdminResults)
			r.Get("/api/admin/audit", h.handleAuditFeed)

			// Candidates
			r.Get("/api/admin/candidates", h.handleGetCandidates)
			r.Post("/api/admin/candidates", h.handleCreateCandidate)
			r.Put("/api/admin/candidates/{id}", h.handleUpdateCandidate)
			r.Delete("/api/admin/candidates/{id}", h.handleDeleteCandidate)

			// Polling units
			r.Get("/api/admin/units", h.handleGetUnits)
			r.Post("/api/admin/units", h.handleCreateUnit)
			r.Put("/api/admin/units/{id}", h.handleUpdateUnit)
			r.Delete("/api/admin/units/{id}", h.handleDeleteUnit)

			// Users
			r.Get("/api/admin/users", h.handleGetUsers)
			r.Post("/api/admin/users", h.handleCreateUser)
			r.Delete("/api/admin/users/{id}", h.handleDeleteUser)

			// Config
			r.Get("/api/admin/config", h.handleGetConfig)
			r.Put("/api/admin/config", h.handleUpdateConfig)
		})
	})

	return r
}
