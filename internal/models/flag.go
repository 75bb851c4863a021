package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Flag описывает жалобу пользователя на контент.
type Flag struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ContentID     uuid.UUID       `db:"content_id" json:"content_id"`
	ReporterID    uuid.UUID       `db:"reporter_id" json:"reporter_id"`
	Reason        string          `db:"reason" json:"reason"`
	Urgency       string          `db:"urgency" json:"urgency"`
	Details       *string         `db:"details" json:"details,omitempty"`
	PriorityScore float64         `db:"priority_score" json:"priority_score"`
	Status        string          `db:"status" json:"status"`
	AIScores      json.RawMessage `db:"ai_scores" json:"ai_scores,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
