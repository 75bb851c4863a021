package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository/common"
)

// VoteRepository отвечает за работу с таблицей votes и атомарный подсчёт голосов.
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository создаёт экземпляр репозитория.
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast записывает голос и обновляет подсчёт одной транзакцией.
// Вставка и условный UPDATE по status = 'pending' либо проходят вместе,
// либо не проходят вовсе: голос не может остаться без учёта в подсчёте,
// а решённая апелляция не может принять новый голос.
func (r *VoteRepository) Cast(ctx context.Context, vote *models.Vote) (*models.AppealTally, error) {
	var tally models.AppealTally

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		insertQuery := `
			INSERT INTO votes (appeal_id, voter_id, decision, weight, is_moderator, confidence, reasoning)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		err := tx.QueryRowxContext(
			ctx, insertQuery,
			vote.AppealID, vote.VoterID, vote.Decision, vote.Weight, vote.IsModerator,
			vote.Confidence, vote.Reasoning,
		).Scan(&vote.ID, &vote.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateVote
			}
			return fmt.Errorf("vote repository: insert %w", err)
		}

		votesFor := 0
		votesAgainst := 0
		if vote.Decision == models.VoteDecisionApprove {
			votesFor = vote.Weight
		} else {
			votesAgainst = vote.Weight
		}

		// Счётчики двигаются на вес голоса, total_votes всегда равен
		// votes_for + votes_against, кворум проверяется по взвешенной сумме.
		tallyQuery := `
			UPDATE appeals
			SET votes_for = votes_for + $1,
				votes_against = votes_against + $2,
				total_votes = total_votes + $1 + $2,
				has_reached_quorum = (total_votes + $1 + $2) >= required_votes,
				voting_status = 'in_progress'
			WHERE id = $3 AND status = 'pending'
			RETURNING votes_for, votes_against, total_votes, required_votes, has_reached_quorum
		`
		err = tx.QueryRowxContext(ctx, tallyQuery, votesFor, votesAgainst, vote.AppealID).Scan(
			&tally.VotesFor, &tally.VotesAgainst, &tally.TotalVotes,
			&tally.RequiredVotes, &tally.HasReachedQuorum,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAppealNotPending
		}
		if err != nil {
			return fmt.Errorf("vote repository: tally %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tally, nil
}

// GetByVoter возвращает голос пользователя по апелляции.
func (r *VoteRepository) GetByVoter(ctx context.Context, appealID, voterID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.GetContext(ctx, &vote, `
		SELECT * FROM votes WHERE appeal_id = $1 AND voter_id = $2
	`, appealID, voterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vote repository: get by voter %w", err)
	}

	return &vote, nil
}

// ListByAppeal возвращает голоса по апелляции.
func (r *VoteRepository) ListByAppeal(ctx context.Context, appealID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.SelectContext(ctx, &votes, `
		SELECT * FROM votes WHERE appeal_id = $1 ORDER BY created_at ASC
	`, appealID)
	if err != nil {
		return nil, fmt.Errorf("vote repository: list by appeal %w", err)
	}
	return votes, nil
}
