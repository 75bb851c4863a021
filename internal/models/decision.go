package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationDecision фиксирует финальное решение по апелляции.
type ModerationDecision struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppealID      uuid.UUID `db:"appeal_id" json:"appeal_id"`
	ContentID     uuid.UUID `db:"content_id" json:"content_id"`
	DecisionType  string    `db:"decision_type" json:"decision_type"`
	ResolvedBy    string    `db:"resolved_by" json:"resolved_by"`
	VotesFor      int       `db:"votes_for" json:"votes_for"`
	VotesAgainst  int       `db:"votes_against" json:"votes_against"`
	TotalVotes    int       `db:"total_votes" json:"total_votes"`
	RequiredVotes int       `db:"required_votes" json:"required_votes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
