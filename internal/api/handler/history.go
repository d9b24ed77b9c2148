package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/careerlens/careerlens/internal/api/middleware"
	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

// HistoryStore is the slice of the store the history handlers need.
type HistoryStore interface {
	CreateAnalysisHistory(ctx context.Context, item *models.AnalysisHistoryItem) error
	ListAnalysisHistory(ctx context.Context, filter store.HistoryFilter) ([]*models.AnalysisHistoryItem, int, error)
	GetAnalysisHistory(ctx context.Context, id, userID uuid.UUID) (*models.AnalysisHistoryItem, error)
	DeleteAnalysisHistory(ctx context.Context, id, userID uuid.UUID) error
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// NewSaveHistoryHandler returns an http.HandlerFunc for POST /api/v1/history.
// Saving is an explicit client action; an analysis stays ephemeral until
// the caller submits it here.
func NewSaveHistoryHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			ResumeText     string                 `json:"resume_text"`
			AnalysisResult *models.AnalysisResult `json:"analysis_result"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if strings.TrimSpace(req.ResumeText) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"resume_text is required", nil)
			return
		}
		if req.AnalysisResult == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"analysis_result is required", nil)
			return
		}
		req.AnalysisResult.Normalize()

		item := &models.AnalysisHistoryItem{
			ID:             uuid.New(),
			UserID:         userID,
			ResumeText:     req.ResumeText,
			AnalysisResult: *req.AnalysisResult,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.CreateAnalysisHistory(r.Context(), item); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to save analysis", nil)
			return
		}

		response.Created(w, item)
	}
}

// NewListHistoryHandler returns an http.HandlerFunc for GET /api/v1/history.
func NewListHistoryHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		page := queryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}
		limit := queryInt(r, "limit", defaultHistoryLimit)
		if limit < 1 {
			limit = defaultHistoryLimit
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}

		items, total, err := s.ListAnalysisHistory(r.Context(), store.HistoryFilter{
			UserID: userID,
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list analysis history", nil)
			return
		}

		if items == nil {
			items = []*models.AnalysisHistoryItem{}
		}
		response.Collection(w, items, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetHistoryHandler returns an http.HandlerFunc for GET /api/v1/history/{historyID}.
func NewGetHistoryHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "historyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"historyID must be a valid UUID", nil)
			return
		}

		item, err := s.GetAnalysisHistory(r.Context(), id, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load analysis", nil)
			return
		}

		response.JSON(w, item)
	}
}

// NewDeleteHistoryHandler returns an http.HandlerFunc for DELETE /api/v1/history/{historyID}.
func NewDeleteHistoryHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "historyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"historyID must be a valid UUID", nil)
			return
		}

		err = s.DeleteAnalysisHistory(r.Context(), id, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to delete analysis", nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
