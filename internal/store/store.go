package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through
// here; every history/profile/share operation is scoped by the owning user
// id so one user can never read or delete another's rows.
type Store interface {
	Ping(ctx context.Context) error

	CreateAnalysisHistory(ctx context.Context, item *models.AnalysisHistoryItem) error
	ListAnalysisHistory(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisHistoryItem, int, error)
	GetAnalysisHistory(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.AnalysisHistoryItem, error)
	DeleteAnalysisHistory(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.Profile, error)

	CreateSharedLink(ctx context.Context, link *models.SharedLink) error
	GetSharedLinksByPrefix(ctx context.Context, prefix string) ([]*models.SharedLink, error)
	RevokeSharedLinks(ctx context.Context, historyID uuid.UUID, userID uuid.UUID) error
}

// HistoryFilter selects a page of one user's saved analyses, newest first.
type HistoryFilter struct {
	UserID uuid.UUID
	Page   int
	Limit  int
}

// ProfileUpdate is a partial profile mutation; nil fields are left untouched.
type ProfileUpdate struct {
	FullName        *string
	Phone           *string
	LinkedinURL     *string
	TargetRole      *string
	ExperienceYears *int
	AvatarURL       *string
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Phone == nil && u.LinkedinURL == nil &&
		u.TargetRole == nil && u.ExperienceYears == nil && u.AvatarURL == nil
}
