package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote описывает взвешенный голос по апелляции.
type Vote struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AppealID    uuid.UUID `db:"appeal_id" json:"appeal_id"`
	VoterID     uuid.UUID `db:"voter_id" json:"voter_id"`
	Decision    string    `db:"decision" json:"decision"`
	Weight      int       `db:"weight" json:"weight"`
	IsModerator bool      `db:"is_moderator" json:"is_moderator"`
	Confidence  int       `db:"confidence" json:"confidence"`
	Reasoning   string    `db:"reasoning" json:"reasoning"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// VoteWeightForRole возвращает вес голоса по роли пользователя.
func VoteWeightForRole(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	default:
		return 1
	}
}
