package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Appeal описывает апелляцию владельца контента на решение модерации.
// Счётчики голосов обновляются только атомарными SQL выражениями,
// required_votes фиксируется при создании и больше не меняется.
type Appeal struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	ContentID         uuid.UUID      `db:"content_id" json:"content_id"`
	AppellantID       uuid.UUID      `db:"appellant_id" json:"appellant_id"`
	AppealType        string         `db:"appeal_type" json:"appeal_type"`
	AppealReason      string         `db:"appeal_reason" json:"appeal_reason"`
	UserStatement     string         `db:"user_statement" json:"user_statement"`
	AdditionalDetails *string        `db:"additional_details" json:"additional_details,omitempty"`
	EvidenceURLs      pq.StringArray `db:"evidence_urls" json:"evidence_urls"`
	UrgencyScore      int            `db:"urgency_score" json:"urgency_score"`
	Status            string         `db:"status" json:"status"`
	VotingStatus      string         `db:"voting_status" json:"voting_status"`
	VotesFor          int            `db:"votes_for" json:"votes_for"`
	VotesAgainst      int            `db:"votes_against" json:"votes_against"`
	TotalVotes        int            `db:"total_votes" json:"total_votes"`
	RequiredVotes     int            `db:"required_votes" json:"required_votes"`
	HasReachedQuorum  bool           `db:"has_reached_quorum" json:"has_reached_quorum"`
	ExpiresAt         time.Time      `db:"expires_at" json:"expires_at"`
	ResolvedAt        *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy        *string        `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// Tally возвращает снимок текущего подсчёта голосов.
func (a *Appeal) Tally() AppealTally {
	return AppealTally{
		VotesFor:         a.VotesFor,
		VotesAgainst:     a.VotesAgainst,
		TotalVotes:       a.TotalVotes,
		RequiredVotes:    a.RequiredVotes,
		HasReachedQuorum: a.HasReachedQuorum,
	}
}

// IsExpired сообщает, истекло ли окно голосования к моменту now.
func (a *Appeal) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// AppealTally снимок подсчёта голосов по апелляции.
type AppealTally struct {
	VotesFor         int  `json:"votes_for"`
	VotesAgainst     int  `json:"votes_against"`
	TotalVotes       int  `json:"total_votes"`
	RequiredVotes    int  `json:"required_votes"`
	HasReachedQuorum bool `json:"has_reached_quorum"`
}
