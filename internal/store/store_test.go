package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("careerlens_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func sampleResult() models.AnalysisResult {
	r := models.AnalysisResult{
		Skills: []models.Skill{
			{Name: "Go", Category: "technical", Proficiency: 85},
		},
		Experience:     models.Experience{Level: "mid", Years: 4, Summary: "Backend work"},
		Education:      models.Education{Degree: "BSc", Field: "CS", Institution: "State"},
		ReadinessScore: 74,
	}
	r.Normalize()
	return r
}

func insertHistory(t *testing.T, s store.Store, userID uuid.UUID) *models.AnalysisHistoryItem {
	t.Helper()
	item := &models.AnalysisHistoryItem{
		ID:             uuid.New(),
		UserID:         userID,
		ResumeText:     "Jane Doe\nGo developer",
		AnalysisResult: sampleResult(),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.CreateAnalysisHistory(context.Background(), item))
	return item
}

// --- Analysis history ---

func TestAnalysisHistory_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)

	got, err := s.GetAnalysisHistory(ctx, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.ResumeText, got.ResumeText)
	assert.Equal(t, 74, got.AnalysisResult.ReadinessScore)
	assert.Equal(t, "Go", got.AnalysisResult.Skills[0].Name)
	assert.WithinDuration(t, item.CreatedAt, got.CreatedAt, time.Second)
}

func TestAnalysisHistory_GetScopedToOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	item := insertHistory(t, s, uuid.New())

	_, err := s.GetAnalysisHistory(ctx, item.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalysisHistory_DuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	item := insertHistory(t, s, uuid.New())
	err := s.CreateAnalysisHistory(ctx, item)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestAnalysisHistory_ListPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		item := &models.AnalysisHistoryItem{
			ID:             uuid.New(),
			UserID:         userID,
			ResumeText:     "resume",
			AnalysisResult: sampleResult(),
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.CreateAnalysisHistory(ctx, item))
	}
	// Another user's rows must not leak in.
	insertHistory(t, s, uuid.New())

	items, total, err := s.ListAnalysisHistory(ctx, store.HistoryFilter{UserID: userID, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	// Newest first.
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))

	items, _, err = s.ListAnalysisHistory(ctx, store.HistoryFilter{UserID: userID, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAnalysisHistory_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)

	require.NoError(t, s.DeleteAnalysisHistory(ctx, item.ID, userID))

	_, err := s.GetAnalysisHistory(ctx, item.ID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteAnalysisHistory(ctx, item.ID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalysisHistory_DeleteScopedToOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)

	err := s.DeleteAnalysisHistory(ctx, item.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetAnalysisHistory(ctx, item.ID, userID)
	assert.NoError(t, err)
}

// --- Profiles ---

func TestProfile_CreateGetUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	created, err := s.CreateProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, created.ID)
	assert.Nil(t, created.FullName)

	name := "Jane Doe"
	years := 4
	updated, err := s.UpdateProfile(ctx, userID, store.ProfileUpdate{
		FullName:        &name,
		ExperienceYears: &years,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Jane Doe", *updated.FullName)
	require.NotNil(t, updated.ExperienceYears)
	assert.Equal(t, 4, *updated.ExperienceYears)
	// Untouched fields stay nil.
	assert.Nil(t, updated.Phone)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestProfile_PartialUpdatePreservesFields(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.CreateProfile(ctx, userID)
	require.NoError(t, err)

	name := "Jane Doe"
	_, err = s.UpdateProfile(ctx, userID, store.ProfileUpdate{FullName: &name})
	require.NoError(t, err)

	role := "Staff Engineer"
	got, err := s.UpdateProfile(ctx, userID, store.ProfileUpdate{TargetRole: &role})
	require.NoError(t, err)
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Jane Doe", *got.FullName)
	require.NotNil(t, got.TargetRole)
	assert.Equal(t, "Staff Engineer", *got.TargetRole)
}

func TestProfile_EmptyUpdateIsRead(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.CreateProfile(ctx, userID)
	require.NoError(t, err)

	got, err := s.UpdateProfile(ctx, userID, store.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)
}

func TestProfile_CreateIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	first, err := s.CreateProfile(ctx, userID)
	require.NoError(t, err)
	second, err := s.CreateProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

// --- Shared links ---

func newLink(historyID, userID uuid.UUID, prefix string) *models.SharedLink {
	expires := time.Now().UTC().Add(24 * time.Hour)
	return &models.SharedLink{
		ID:          uuid.New(),
		HistoryID:   historyID,
		UserID:      userID,
		TokenHash:   "$2a$10$fakehashfakehashfakehash",
		TokenPrefix: prefix,
		ExpiresAt:   &expires,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestSharedLink_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)
	link := newLink(item.ID, userID, "cls_abcd")
	require.NoError(t, s.CreateSharedLink(ctx, link))

	links, err := s.GetSharedLinksByPrefix(ctx, "cls_abcd")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.ID, links[0].ID)
	assert.Equal(t, item.ID, links[0].HistoryID)

	links, err = s.GetSharedLinksByPrefix(ctx, "cls_none")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestSharedLink_RevokeHidesFromLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)
	require.NoError(t, s.CreateSharedLink(ctx, newLink(item.ID, userID, "cls_efgh")))

	require.NoError(t, s.RevokeSharedLinks(ctx, item.ID, userID))

	links, err := s.GetSharedLinksByPrefix(ctx, "cls_efgh")
	require.NoError(t, err)
	assert.Empty(t, links)

	// Nothing left to revoke.
	err = s.RevokeSharedLinks(ctx, item.ID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSharedLink_CascadeDeleteWithHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	userID := uuid.New()

	item := insertHistory(t, s, userID)
	require.NoError(t, s.CreateSharedLink(ctx, newLink(item.ID, userID, "cls_ijkl")))

	require.NoError(t, s.DeleteAnalysisHistory(ctx, item.ID, userID))

	links, err := s.GetSharedLinksByPrefix(ctx, "cls_ijkl")
	require.NoError(t, err)
	assert.Empty(t, links)
}

// --- Ping ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	assert.NoError(t, s.Ping(context.Background()))
}
