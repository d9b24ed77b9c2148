package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/careerlens/careerlens/internal/api/middleware"
	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/internal/cache"
	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

// ShareStore is the slice of the store the share handlers need.
type ShareStore interface {
	GetAnalysisHistory(ctx context.Context, id, userID uuid.UUID) (*models.AnalysisHistoryItem, error)
	CreateSharedLink(ctx context.Context, link *models.SharedLink) error
	GetSharedLinksByPrefix(ctx context.Context, prefix string) ([]*models.SharedLink, error)
	RevokeSharedLinks(ctx context.Context, historyID, userID uuid.UUID) error
}

const (
	shareTokenPrefixLen = 8
	defaultShareTTL     = 7 * 24 * time.Hour
	maxShareTTLHours    = 24 * 30
	sharedSnapshotTTL   = 60 * time.Second
)

// sharedSnapshot is the cached form of a resolved share lookup. The token
// hash travels with it so a cache hit still verifies the presented token.
type sharedSnapshot struct {
	TokenHash string                `json:"token_hash"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
	Analysis  models.AnalysisResult `json:"analysis"`
	CreatedAt time.Time             `json:"created_at"`
}

// NewCreateShareHandler returns an http.HandlerFunc for
// POST /api/v1/history/{historyID}/share. The raw token is returned once
// and only its bcrypt hash is stored.
func NewCreateShareHandler(s ShareStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		historyID, err := uuid.Parse(chi.URLParam(r, "historyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"historyID must be a valid UUID", nil)
			return
		}

		var req struct {
			ExpiresInHours int `json:"expires_in_hours"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
		}
		if req.ExpiresInHours < 0 || req.ExpiresInHours > maxShareTTLHours {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"expires_in_hours must be between 0 and 720", nil)
			return
		}

		// Ownership check before minting a token.
		if _, err := s.GetAnalysisHistory(r.Context(), historyID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load analysis", nil)
			return
		}

		rawToken, err := newShareToken()
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create share link", nil)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create share link", nil)
			return
		}

		ttl := defaultShareTTL
		if req.ExpiresInHours > 0 {
			ttl = time.Duration(req.ExpiresInHours) * time.Hour
		}
		expiresAt := time.Now().UTC().Add(ttl)

		link := &models.SharedLink{
			ID:          uuid.New(),
			HistoryID:   historyID,
			UserID:      userID,
			TokenHash:   string(hash),
			TokenPrefix: rawToken[:shareTokenPrefixLen],
			ExpiresAt:   &expiresAt,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.CreateSharedLink(r.Context(), link); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create share link", nil)
			return
		}

		response.Created(w, map[string]any{
			"token":      rawToken,
			"expires_at": expiresAt.Format(time.RFC3339),
		})
	}
}

// NewRevokeShareHandler returns an http.HandlerFunc for
// DELETE /api/v1/history/{historyID}/share.
func NewRevokeShareHandler(s ShareStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		historyID, err := uuid.Parse(chi.URLParam(r, "historyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"historyID must be a valid UUID", nil)
			return
		}

		err = s.RevokeSharedLinks(r.Context(), historyID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "No active share links", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to revoke share links", nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// NewGetSharedHandler returns an http.HandlerFunc for the public
// GET /api/v1/shared/{token}. The response carries only the analysis
// result, never the resume text. Resolved lookups are cached briefly so
// a widely shared link does not hammer the database; the cache may be nil.
func NewGetSharedHandler(s ShareStore, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := chi.URLParam(r, "token")
		if len(rawToken) < shareTokenPrefixLen {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Share link not found", nil)
			return
		}
		prefix := rawToken[:shareTokenPrefixLen]

		if c != nil {
			if raw, found, err := c.Get(r.Context(), cache.SharedResultKey(prefix)); err == nil && found {
				var snap sharedSnapshot
				if json.Unmarshal(raw, &snap) == nil &&
					bcrypt.CompareHashAndPassword([]byte(snap.TokenHash), []byte(rawToken)) == nil {
					respondShared(w, snap)
					return
				}
			}
		}

		links, err := s.GetSharedLinksByPrefix(r.Context(), prefix)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to resolve share link", nil)
			return
		}

		var matched *models.SharedLink
		for _, link := range links {
			if bcrypt.CompareHashAndPassword([]byte(link.TokenHash), []byte(rawToken)) == nil {
				matched = link
				break
			}
		}
		if matched == nil {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Share link not found", nil)
			return
		}

		item, err := s.GetAnalysisHistory(r.Context(), matched.HistoryID, matched.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load analysis", nil)
			return
		}

		snap := sharedSnapshot{
			TokenHash: matched.TokenHash,
			ExpiresAt: matched.ExpiresAt,
			Analysis:  item.AnalysisResult,
			CreatedAt: item.CreatedAt,
		}
		if c != nil {
			if raw, err := json.Marshal(snap); err == nil {
				_ = c.Set(r.Context(), cache.SharedResultKey(prefix), raw, sharedSnapshotTTL)
			}
		}
		respondShared(w, snap)
	}
}

func respondShared(w http.ResponseWriter, snap sharedSnapshot) {
	if snap.ExpiresAt != nil && time.Now().After(*snap.ExpiresAt) {
		response.Error(w, http.StatusGone, "EXPIRED", "Share link has expired", nil)
		return
	}
	response.JSON(w, map[string]any{
		"analysis":   snap.Analysis,
		"created_at": snap.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func newShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "cls_" + hex.EncodeToString(buf), nil
}
