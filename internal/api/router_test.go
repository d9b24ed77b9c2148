package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/internal/api"
	mw "github.com/careerlens/careerlens/internal/api/middleware"
)

const routerTestSecret = "router-test-secret"

// memoryCache is an in-process cache.Cache for rate limit tests.
type memoryCache struct {
	counters map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{counters: make(map[string]int64)}
}

func (m *memoryCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (m *memoryCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (m *memoryCache) Delete(_ context.Context, _ string) error { return nil }

func (m *memoryCache) Ping(_ context.Context) error { return nil }

func (m *memoryCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.counters[key]++
	return m.counters[key], nil
}

func testRouter(t *testing.T, deps api.Dependencies) http.Handler {
	t.Helper()
	if deps.Auth == nil {
		deps.Auth = mw.NewAuth(routerTestSecret, "")
	}
	if deps.RateLimit == nil {
		deps.RateLimit = mw.NewRateLimit(newMemoryCache(), 100)
	}
	return api.NewRouter(deps)
}

func signRouterToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(routerTestSecret))
	require.NoError(t, err)
	return signed
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	router := testRouter(t, api.Dependencies{ListHistoryHandler: okHandler})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProtectedRouteWithValidToken(t *testing.T) {
	router := testRouter(t, api.Dependencies{ListHistoryHandler: okHandler})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("Authorization", "Bearer "+signRouterToken(t, uuid.New()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_GarbageTokenRejected(t *testing.T) {
	router := testRouter(t, api.Dependencies{ListHistoryHandler: okHandler})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PublicRoutesSkipAuth(t *testing.T) {
	router := testRouter(t, api.Dependencies{
		HealthHandler:    okHandler,
		GetSharedHandler: okHandler,
	})

	for _, path := range []string{"/api/v1/health", "/api/v1/shared/cls_abc12345"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// Analysis and text extraction serve anonymous callers; a token is
// honored when present but never required.
func TestRouter_AnalyzeAllowsAnonymous(t *testing.T) {
	router := testRouter(t, api.Dependencies{
		AnalyzeHandler:     okHandler,
		ExtractTextHandler: okHandler,
	})

	for _, path := range []string{"/api/v1/analyze", "/api/v1/extract-text"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_AnalyzeRejectsGarbageToken(t *testing.T) {
	router := testRouter(t, api.Dependencies{AnalyzeHandler: okHandler})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SaveHistoryRequiresToken(t *testing.T) {
	router := testRouter(t, api.Dependencies{SaveHistoryHandler: okHandler})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/history", nil)
	req.Header.Set("Authorization", "Bearer "+signRouterToken(t, uuid.New()))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := testRouter(t, api.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MissingHandlerIs501(t *testing.T) {
	router := testRouter(t, api.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_IMPLEMENTED")
}

func TestRouter_RateLimitExceeded(t *testing.T) {
	router := testRouter(t, api.Dependencies{
		ListHistoryHandler: okHandler,
		RateLimit:          mw.NewRateLimit(newMemoryCache(), 2),
	})
	token := signRouterToken(t, uuid.New())

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
