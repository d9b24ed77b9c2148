package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is per-user career metadata, keyed by the identity provider's
// user id. Created lazily on first access; all fields optional.
type Profile struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	FullName        *string   `db:"full_name"        json:"full_name"`
	Phone           *string   `db:"phone"            json:"phone"`
	LinkedinURL     *string   `db:"linkedin_url"     json:"linkedin_url"`
	TargetRole      *string   `db:"target_role"      json:"target_role"`
	ExperienceYears *int      `db:"experience_years" json:"experience_years"`
	AvatarURL       *string   `db:"avatar_url"       json:"avatar_url"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`
}
