package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// DecisionRepository отвечает за журнал финальных решений модерации.
type DecisionRepository struct {
	db *sqlx.DB
}

// NewDecisionRepository создаёт экземпляр репозитория.
func NewDecisionRepository(db *sqlx.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create добавляет запись решения в журнал.
func (r *DecisionRepository) Create(ctx context.Context, decision *models.ModerationDecision) error {
	query := `
		INSERT INTO moderation_decisions (appeal_id, content_id, decision_type, resolved_by,
			votes_for, votes_against, total_votes, required_votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		decision.AppealID, decision.ContentID, decision.DecisionType, decision.ResolvedBy,
		decision.VotesFor, decision.VotesAgainst, decision.TotalVotes, decision.RequiredVotes,
	).Scan(&decision.ID, &decision.CreatedAt); err != nil {
		return fmt.Errorf("decision repository: create %w", err)
	}

	return nil
}

// GetByAppeal возвращает решение по апелляции.
func (r *DecisionRepository) GetByAppeal(ctx context.Context, appealID uuid.UUID) (*models.ModerationDecision, error) {
	var decision models.ModerationDecision
	err := r.db.GetContext(ctx, &decision, `
		SELECT * FROM moderation_decisions WHERE appeal_id = $1
	`, appealID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("decision repository: get by appeal %w", err)
	}

	return &decision, nil
}

// ListByContent возвращает историю решений по контенту.
func (r *DecisionRepository) ListByContent(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.ModerationDecision, error) {
	var decisions []models.ModerationDecision
	err := r.db.SelectContext(ctx, &decisions, `
		SELECT * FROM moderation_decisions
		WHERE content_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, contentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("decision repository: list by content %w", err)
	}
	return decisions, nil
}
