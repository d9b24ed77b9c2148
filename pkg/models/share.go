package models

import (
	"time"

	"github.com/google/uuid"
)

// SharedLink grants public read access to one saved analysis.
// Raw tokens are shown once at creation; only the bcrypt hash is stored.
type SharedLink struct {
	ID          uuid.UUID  `db:"id"           json:"id"`
	HistoryID   uuid.UUID  `db:"history_id"   json:"history_id"`
	UserID      uuid.UUID  `db:"user_id"      json:"user_id"`
	TokenHash   string     `db:"token_hash"   json:"-"`
	TokenPrefix string     `db:"token_prefix" json:"token_prefix"`
	ExpiresAt   *time.Time `db:"expires_at"   json:"expires_at,omitempty"`
	RevokedAt   *time.Time `db:"revoked_at"   json:"-"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
}
