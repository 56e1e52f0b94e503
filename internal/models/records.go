package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SessionRecord is the persisted shell of a SessionState. Answers live in
// their own table so insertion order survives a restart.
type SessionRecord struct {
	ID             string         `gorm:"primaryKey;type:uuid"`
	Demographics   string         `gorm:"type:jsonb"`
	PendingCodes   pq.StringArray `gorm:"type:text[]"`
	IsComplete     bool           `gorm:"index"`
	CompleteReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AnswerRecord is one answered item; Position preserves answer order.
type AnswerRecord struct {
	gorm.Model
	SessionID string `gorm:"index:idx_answers_session_position,priority:1"`
	Position  int    `gorm:"index:idx_answers_session_position,priority:2"`
	ItemCode  string
	RawValue  int
	LatencyMs float64
}

// ScoreRecord is one final dimension score for a completed session.
type ScoreRecord struct {
	gorm.Model
	SessionID      string `gorm:"index"`
	Dimension      string
	Score          float64
	NItems         int
	Interpretation string
}
