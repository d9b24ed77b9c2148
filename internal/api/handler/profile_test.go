package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/internal/api/handler"
	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

// fakeProfileStore implements handler.ProfileStore in memory.
type fakeProfileStore struct {
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (f *fakeProfileStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	p := &models.Profile{ID: userID, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	f.profiles[userID] = p
	return p, nil
}

func (f *fakeProfileStore) UpdateProfile(_ context.Context, userID uuid.UUID, upd store.ProfileUpdate) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.FullName != nil {
		p.FullName = upd.FullName
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	if upd.LinkedinURL != nil {
		p.LinkedinURL = upd.LinkedinURL
	}
	if upd.TargetRole != nil {
		p.TargetRole = upd.TargetRole
	}
	if upd.ExperienceYears != nil {
		p.ExperienceYears = upd.ExperienceYears
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

func TestGetProfile_CreatesOnFirstAccess(t *testing.T) {
	fs := newFakeProfileStore()
	h := handler.NewGetProfileHandler(fs)
	userID := uuid.New()

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, fs.profiles, userID)
}

func TestGetProfile_ReturnsExisting(t *testing.T) {
	fs := newFakeProfileStore()
	userID := uuid.New()
	name := "Jane Doe"
	fs.profiles[userID] = &models.Profile{ID: userID, FullName: &name}

	h := handler.NewGetProfileHandler(fs)
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func patchProfile(t *testing.T, h http.HandlerFunc, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authed(req, userID))
	return rec
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	fs := newFakeProfileStore()
	userID := uuid.New()
	name := "Jane Doe"
	fs.profiles[userID] = &models.Profile{ID: userID, FullName: &name}

	h := handler.NewUpdateProfileHandler(fs)
	rec := patchProfile(t, h, userID, `{"target_role": "Staff Engineer", "experience_years": 6}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.FullName)
	assert.Equal(t, "Jane Doe", *body.Data.FullName)
	require.NotNil(t, body.Data.TargetRole)
	assert.Equal(t, "Staff Engineer", *body.Data.TargetRole)
	require.NotNil(t, body.Data.ExperienceYears)
	assert.Equal(t, 6, *body.Data.ExperienceYears)
}

func TestUpdateProfile_CreatesRowWhenMissing(t *testing.T) {
	fs := newFakeProfileStore()
	userID := uuid.New()

	h := handler.NewUpdateProfileHandler(fs)
	rec := patchProfile(t, h, userID, `{"full_name": "New User"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New User")
}

func TestUpdateProfile_RejectsBadExperienceYears(t *testing.T) {
	h := handler.NewUpdateProfileHandler(newFakeProfileStore())

	for _, body := range []string{
		`{"experience_years": -1}`,
		`{"experience_years": 81}`,
	} {
		rec := patchProfile(t, h, uuid.New(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestUpdateProfile_RejectsBadLinkedinURL(t *testing.T) {
	h := handler.NewUpdateProfileHandler(newFakeProfileStore())
	rec := patchProfile(t, h, uuid.New(), `{"linkedin_url": "not a url"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "linkedin_url")
}

func TestUpdateProfile_InvalidJSON(t *testing.T) {
	h := handler.NewUpdateProfileHandler(newFakeProfileStore())
	rec := patchProfile(t, h, uuid.New(), `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
