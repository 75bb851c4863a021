package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository/common"
)

// AppealRepository отвечает за работу с таблицей appeals.
type AppealRepository struct {
	db *sqlx.DB
}

// NewAppealRepository создаёт экземпляр репозитория.
func NewAppealRepository(db *sqlx.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

// Create создаёт апелляцию. Частичный уникальный индекс по content_id
// для pending апелляций превращает повторную апелляцию в ErrDuplicateAppeal.
func (r *AppealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	query := `
		INSERT INTO appeals (content_id, appellant_id, appeal_type, appeal_reason,
			user_statement, additional_details, evidence_urls, urgency_score,
			required_votes, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, status, voting_status, votes_for, votes_against, total_votes,
			has_reached_quorum, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		appeal.ContentID, appeal.AppellantID, appeal.AppealType, appeal.AppealReason,
		appeal.UserStatement, appeal.AdditionalDetails, pq.Array([]string(appeal.EvidenceURLs)),
		appeal.UrgencyScore, appeal.RequiredVotes, appeal.ExpiresAt,
	).Scan(
		&appeal.ID, &appeal.Status, &appeal.VotingStatus, &appeal.VotesFor,
		&appeal.VotesAgainst, &appeal.TotalVotes, &appeal.HasReachedQuorum, &appeal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAppeal
		}
		return fmt.Errorf("appeal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает апелляцию по идентификатору.
func (r *AppealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	return common.GetByID[models.Appeal](ctx, r.db, "appeals", id, ErrAppealNotFound)
}

// GetPendingByContent возвращает открытую апелляцию по контенту.
func (r *AppealRepository) GetPendingByContent(ctx context.Context, contentID uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	err := r.db.GetContext(ctx, &appeal, `
		SELECT * FROM appeals WHERE content_id = $1 AND status = 'pending'
	`, contentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appeal repository: get pending by content %w", err)
	}

	return &appeal, nil
}

// ListQueue возвращает открытые апелляции, самые срочные первыми.
func (r *AppealRepository) ListQueue(ctx context.Context, limit, offset int) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := r.db.SelectContext(ctx, &appeals, `
		SELECT * FROM appeals
		WHERE status = 'pending'
		ORDER BY urgency_score DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("appeal repository: list queue %w", err)
	}
	return appeals, nil
}

// ListByAppellant возвращает апелляции пользователя с пагинацией.
func (r *AppealRepository) ListByAppellant(ctx context.Context, appellantID uuid.UUID, limit, offset int) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := r.db.SelectContext(ctx, &appeals, `
		SELECT * FROM appeals
		WHERE appellant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, appellantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("appeal repository: list by appellant %w", err)
	}
	return appeals, nil
}

// ListExpiredPending возвращает пачку просроченных открытых апелляций.
func (r *AppealRepository) ListExpiredPending(ctx context.Context, limit int) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := r.db.SelectContext(ctx, &appeals, `
		SELECT * FROM appeals
		WHERE status = 'pending' AND expires_at < NOW()
		ORDER BY expires_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("appeal repository: list expired pending %w", err)
	}
	return appeals, nil
}

// Resolve переводит апелляцию из pending в финальный статус.
// Compare-and-set по статусу: ноль затронутых строк означает, что решение
// уже принято другим путём, и возвращается ErrAppealNotPending.
// Решение вычисляется внутри того же UPDATE по текущему подсчёту, поэтому
// голос, успевший между чтением и резолюцией, не может разойтись с итогом.
// Правило одно для обоих триггеров: перевес "за" одобряет, ничья отклоняет.
// Истечение окна закрывает апелляцию и без кворума.
func (r *AppealRepository) Resolve(ctx context.Context, id uuid.UUID, resolvedBy string) (*models.Appeal, error) {
	var appeal models.Appeal
	err := r.db.GetContext(ctx, &appeal, `
		UPDATE appeals
		SET status = CASE
				WHEN votes_for > votes_against THEN 'approved'
				ELSE 'rejected'
			END,
			voting_status = 'completed',
			resolved_by = $1,
			resolved_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING *
	`, resolvedBy, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppealNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("appeal repository: resolve %w", err)
	}

	return &appeal, nil
}
