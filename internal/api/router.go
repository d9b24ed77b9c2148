package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/careerlens/careerlens/internal/api/middleware"
	"github.com/careerlens/careerlens/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler        http.HandlerFunc
	AnalyzeHandler       http.HandlerFunc
	ExtractTextHandler   http.HandlerFunc
	SaveHistoryHandler   http.HandlerFunc
	ListHistoryHandler   http.HandlerFunc
	GetHistoryHandler    http.HandlerFunc
	DeleteHistoryHandler http.HandlerFunc
	CreateShareHandler   http.HandlerFunc
	RevokeShareHandler   http.HandlerFunc
	GetSharedHandler     http.HandlerFunc
	GetProfileHandler    http.HandlerFunc
	UpdateProfileHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/shared/{token}", orNotImplemented(deps.GetSharedHandler))

	// Anonymous analysis: auth is optional, the rate limiter keys on the
	// user id when one is present.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.AuthenticateOptional)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.Post("/api/v1/extract-text", orNotImplemented(deps.ExtractTextHandler))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/history", orNotImplemented(deps.SaveHistoryHandler))
		r.Get("/api/v1/history", orNotImplemented(deps.ListHistoryHandler))
		r.Get("/api/v1/history/{historyID}", orNotImplemented(deps.GetHistoryHandler))
		r.Delete("/api/v1/history/{historyID}", orNotImplemented(deps.DeleteHistoryHandler))
		r.Post("/api/v1/history/{historyID}/share", orNotImplemented(deps.CreateShareHandler))
		r.Delete("/api/v1/history/{historyID}/share", orNotImplemented(deps.RevokeShareHandler))

		r.Get("/api/v1/profile", orNotImplemented(deps.GetProfileHandler))
		r.Patch("/api/v1/profile", orNotImplemented(deps.UpdateProfileHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
