package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrContentNotFound      = errors.New("content not found")
	ErrFlagNotFound         = errors.New("flag not found")
	ErrAppealNotFound       = errors.New("appeal not found")
	ErrVoteNotFound         = errors.New("vote not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrConfigNotFound       = errors.New("admin config not found")

	ErrDuplicateFlag         = errors.New("duplicate pending flag")
	ErrDuplicateAppeal       = errors.New("duplicate pending appeal")
	ErrDuplicateVote         = errors.New("duplicate vote")
	ErrDuplicateNotification = errors.New("duplicate notification")
	ErrDuplicateReputation   = errors.New("duplicate reputation event")

	// ErrAppealNotPending возвращается, когда условное обновление не нашло
	// апелляцию в статусе pending.
	ErrAppealNotPending = errors.New("appeal is not pending")
)

// isUniqueViolation проверяет нарушение уникального индекса Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
