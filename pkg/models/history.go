package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisHistoryItem is a saved analysis owned by a user. Items are
// immutable once created; the only mutation is deletion by id+owner.
type AnalysisHistoryItem struct {
	ID             uuid.UUID      `db:"id"              json:"id"`
	UserID         uuid.UUID      `db:"user_id"         json:"user_id"`
	ResumeText     string         `db:"resume_text"     json:"resume_text"`
	AnalysisResult AnalysisResult `db:"analysis_result" json:"analysis_result"`
	CreatedAt      time.Time      `db:"created_at"      json:"created_at"`
}
