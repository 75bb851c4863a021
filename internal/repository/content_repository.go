package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository/common"
)

// ContentRepository отвечает за работу с таблицей contents.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository создаёт экземпляр репозитория.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create создаёт запись контента.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	query := `
		INSERT INTO contents (owner_id, content_type, body, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, flag_count, created_at, updated_at
	`

	if content.Status == "" {
		content.Status = models.ContentStatusVisible
	}

	if err := r.db.QueryRowxContext(
		ctx, query,
		content.OwnerID, content.ContentType, content.Body, content.Status,
	).Scan(&content.ID, &content.FlagCount, &content.CreatedAt, &content.UpdatedAt); err != nil {
		return fmt.Errorf("content repository: create %w", err)
	}

	return nil
}

// GetByID возвращает контент по идентификатору.
func (r *ContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	return common.GetByID[models.Content](ctx, r.db, "contents", id, ErrContentNotFound)
}

// IncrementFlagCount атомарно увеличивает счётчик жалоб и возвращает новое значение.
// Однo UPDATE выражение, никакого read-modify-write.
func (r *ContentRepository) IncrementFlagCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `
		UPDATE contents
		SET flag_count = flag_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING flag_count
	`
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("content repository: increment flag count %w", err)
	}

	return count, nil
}

// AutoHide переводит видимый контент в hidden_pending_review, если счётчик жалоб
// достиг порога. Условный UPDATE гарантирует ровно одного победителя.
func (r *ContentRepository) AutoHide(ctx context.Context, id uuid.UUID, threshold int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contents
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND flag_count >= $4
	`, models.ContentStatusHiddenPending, id, models.ContentStatusVisible, threshold)
	if err != nil {
		return false, fmt.Errorf("content repository: auto hide %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("content repository: auto hide rows affected %w", err)
	}

	return affected > 0, nil
}

// TransitionStatus условно переводит контент из одного статуса в другой.
func (r *ContentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contents
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("content repository: transition status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("content repository: transition status rows affected %w", err)
	}

	return affected > 0, nil
}
