package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerlens/careerlens/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Analysis history ---

func (s *PostgresStore) CreateAnalysisHistory(ctx context.Context, item *models.AnalysisHistoryItem) error {
	resultJSON, err := json.Marshal(item.AnalysisResult)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_history (id, user_id, resume_text, analysis_result, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.UserID, item.ResumeText, resultJSON, item.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create analysis history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAnalysisHistory(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisHistoryItem, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis_history WHERE user_id = $1`, filter.UserID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analysis history: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, resume_text, analysis_result, created_at
		 FROM analysis_history WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		filter.UserID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list analysis history: %w", err)
	}
	defer rows.Close()

	var items []*models.AnalysisHistoryItem
	for rows.Next() {
		item, err := scanHistoryItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (s *PostgresStore) GetAnalysisHistory(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.AnalysisHistoryItem, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, resume_text, analysis_result, created_at
		 FROM analysis_history WHERE id = $1 AND user_id = $2`, id, userID)

	item, err := scanHistoryItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteAnalysisHistory(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM analysis_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete analysis history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryItem(row rowScanner) (*models.AnalysisHistoryItem, error) {
	var item models.AnalysisHistoryItem
	var resultJSON []byte
	if err := row.Scan(&item.ID, &item.UserID, &item.ResumeText, &resultJSON, &item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis history: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &item.AnalysisResult); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	return &item, nil
}

// --- Profiles ---

const profileColumns = `id, full_name, phone, linkedin_url, target_role, experience_years, avatar_url, created_at, updated_at`

func (s *PostgresStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FullName, &p.Phone, &p.LinkedinURL, &p.TargetRole,
		&p.ExperienceYears, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, created_at, updated_at) VALUES ($1, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET updated_at = profiles.updated_at
		 RETURNING `+profileColumns,
		userID,
	).Scan(&p.ID, &p.FullName, &p.Phone, &p.LinkedinURL, &p.TargetRole,
		&p.ExperienceYears, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.Profile, error) {
	if upd.Empty() {
		return s.GetProfile(ctx, userID)
	}

	query := `UPDATE profiles SET updated_at = $2`
	args := []any{userID, time.Now().UTC()}
	argIdx := 3

	set := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argIdx)
		args = append(args, value)
		argIdx++
	}
	if upd.FullName != nil {
		set("full_name", *upd.FullName)
	}
	if upd.Phone != nil {
		set("phone", *upd.Phone)
	}
	if upd.LinkedinURL != nil {
		set("linkedin_url", *upd.LinkedinURL)
	}
	if upd.TargetRole != nil {
		set("target_role", *upd.TargetRole)
	}
	if upd.ExperienceYears != nil {
		set("experience_years", *upd.ExperienceYears)
	}
	if upd.AvatarURL != nil {
		set("avatar_url", *upd.AvatarURL)
	}

	query += ` WHERE id = $1 RETURNING ` + profileColumns

	var p models.Profile
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.FullName, &p.Phone, &p.LinkedinURL, &p.TargetRole,
		&p.ExperienceYears, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

// --- Shared links ---

func (s *PostgresStore) CreateSharedLink(ctx context.Context, link *models.SharedLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO shared_links (id, history_id, user_id, token_hash, token_prefix, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.ID, link.HistoryID, link.UserID, link.TokenHash, link.TokenPrefix,
		link.ExpiresAt, link.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create shared link: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSharedLinksByPrefix(ctx context.Context, prefix string) ([]*models.SharedLink, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, history_id, user_id, token_hash, token_prefix, expires_at, revoked_at, created_at
		 FROM shared_links WHERE token_prefix = $1 AND revoked_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get shared links by prefix: %w", err)
	}
	defer rows.Close()

	var links []*models.SharedLink
	for rows.Next() {
		var l models.SharedLink
		if err := rows.Scan(&l.ID, &l.HistoryID, &l.UserID, &l.TokenHash, &l.TokenPrefix,
			&l.ExpiresAt, &l.RevokedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shared link: %w", err)
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

func (s *PostgresStore) RevokeSharedLinks(ctx context.Context, historyID uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE shared_links SET revoked_at = NOW()
		 WHERE history_id = $1 AND user_id = $2 AND revoked_at IS NULL`, historyID, userID)
	if err != nil {
		return fmt.Errorf("revoke shared links: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
