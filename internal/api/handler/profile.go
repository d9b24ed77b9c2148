package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	mw "github.com/careerlens/careerlens/internal/api/middleware"
	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

// ProfileStore is the slice of the store the profile handlers need.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd store.ProfileUpdate) (*models.Profile, error)
}

// NewGetProfileHandler returns an http.HandlerFunc for GET /api/v1/profile.
// A missing row is created on first access so every authenticated user
// has a profile.
func NewGetProfileHandler(s ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		profile, err := s.GetProfile(r.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			profile, err = s.CreateProfile(r.Context(), userID)
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load profile", nil)
			return
		}

		response.JSON(w, profile)
	}
}

// NewUpdateProfileHandler returns an http.HandlerFunc for PATCH /api/v1/profile.
// Only fields present in the body are changed.
func NewUpdateProfileHandler(s ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			FullName        *string `json:"full_name"`
			Phone           *string `json:"phone"`
			LinkedinURL     *string `json:"linkedin_url"`
			TargetRole      *string `json:"target_role"`
			ExperienceYears *int    `json:"experience_years"`
			AvatarURL       *string `json:"avatar_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.ExperienceYears != nil && (*req.ExperienceYears < 0 || *req.ExperienceYears > 80) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"experience_years must be between 0 and 80", nil)
			return
		}
		if req.LinkedinURL != nil && *req.LinkedinURL != "" && !validHTTPURL(*req.LinkedinURL) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"linkedin_url must be a valid http(s) URL", nil)
			return
		}

		upd := store.ProfileUpdate{
			FullName:        req.FullName,
			Phone:           req.Phone,
			LinkedinURL:     req.LinkedinURL,
			TargetRole:      req.TargetRole,
			ExperienceYears: req.ExperienceYears,
			AvatarURL:       req.AvatarURL,
		}

		profile, err := s.UpdateProfile(r.Context(), userID, upd)
		if errors.Is(err, store.ErrNotFound) {
			// Patch before first GET; create the row and retry once.
			if _, cerr := s.CreateProfile(r.Context(), userID); cerr == nil {
				profile, err = s.UpdateProfile(r.Context(), userID, upd)
			}
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to update profile", nil)
			return
		}

		response.JSON(w, profile)
	}
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
