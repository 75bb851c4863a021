package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository/common"
)

// FlagRepository отвечает за работу с таблицей flags.
type FlagRepository struct {
	db *sqlx.DB
}

// NewFlagRepository создаёт экземпляр репозитория.
func NewFlagRepository(db *sqlx.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// Create создаёт жалобу. Частичный уникальный индекс по (content_id, reporter_id)
// для активных жалоб превращает повторную жалобу в ErrDuplicateFlag.
func (r *FlagRepository) Create(ctx context.Context, flag *models.Flag) error {
	query := `
		INSERT INTO flags (content_id, reporter_id, reason, urgency, details, priority_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		flag.ContentID, flag.ReporterID, flag.Reason, flag.Urgency, flag.Details, flag.PriorityScore,
	).Scan(&flag.ID, &flag.Status, &flag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFlag
		}
		return fmt.Errorf("flag repository: create %w", err)
	}

	return nil
}

// GetByID возвращает жалобу по идентификатору.
func (r *FlagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Flag, error) {
	return common.GetByID[models.Flag](ctx, r.db, "flags", id, ErrFlagNotFound)
}

// GetActiveByReporter возвращает активную жалобу пользователя на контент.
func (r *FlagRepository) GetActiveByReporter(ctx context.Context, contentID, reporterID uuid.UUID) (*models.Flag, error) {
	var flag models.Flag
	err := r.db.GetContext(ctx, &flag, `
		SELECT * FROM flags
		WHERE content_id = $1 AND reporter_id = $2 AND status = 'active'
	`, contentID, reporterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("flag repository: get active by reporter %w", err)
	}

	return &flag, nil
}

// ListByContent возвращает жалобы на контент, самые приоритетные первыми.
func (r *FlagRepository) ListByContent(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.Flag, error) {
	var flags []models.Flag
	err := r.db.SelectContext(ctx, &flags, `
		SELECT * FROM flags
		WHERE content_id = $1
		ORDER BY priority_score DESC, created_at ASC
		LIMIT $2 OFFSET $3
	`, contentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("flag repository: list by content %w", err)
	}
	return flags, nil
}

// ListByReporter возвращает жалобы пользователя с пагинацией.
func (r *FlagRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Flag, error) {
	var flags []models.Flag
	err := r.db.SelectContext(ctx, &flags, `
		SELECT * FROM flags
		WHERE reporter_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, reporterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("flag repository: list by reporter %w", err)
	}
	return flags, nil
}

// AttachAIScores сохраняет оценки классификатора на жалобе.
func (r *FlagRepository) AttachAIScores(ctx context.Context, id uuid.UUID, scores json.RawMessage) error {
	res, err := r.db.ExecContext(ctx, `UPDATE flags SET ai_scores = $1 WHERE id = $2`, scores, id)
	if err != nil {
		return fmt.Errorf("flag repository: attach ai scores %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("flag repository: attach ai scores rows affected %w", err)
	}
	if affected == 0 {
		return ErrFlagNotFound
	}

	return nil
}

// ResolveActiveByContent закрывает все активные жалобы на контент.
func (r *FlagRepository) ResolveActiveByContent(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE flags SET status = 'resolved' WHERE content_id = $1 AND status = 'active'
	`, contentID)
	if err != nil {
		return fmt.Errorf("flag repository: resolve active by content %w", err)
	}
	return nil
}

// DominantReason возвращает причину с наибольшим суммарным приоритетом среди жалоб на контент.
func (r *FlagRepository) DominantReason(ctx context.Context, contentID uuid.UUID) (string, error) {
	var reason string
	err := r.db.GetContext(ctx, &reason, `
		SELECT reason FROM flags
		WHERE content_id = $1
		GROUP BY reason
		ORDER BY SUM(priority_score) DESC
		LIMIT 1
	`, contentID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrFlagNotFound
	}
	if err != nil {
		return "", fmt.Errorf("flag repository: dominant reason %w", err)
	}

	return reason, nil
}

// CountByContent возвращает количество жалоб на контент.
func (r *FlagRepository) CountByContent(ctx context.Context, contentID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM flags WHERE content_id = $1`, contentID); err != nil {
		return 0, fmt.Errorf("flag repository: count by content %w", err)
	}
	return count, nil
}
