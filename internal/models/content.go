package models

import (
	"time"

	"github.com/google/uuid"
)

// Content описывает единицу пользовательского контента под модерацией.
type Content struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	ContentType string    `db:"content_type" json:"content_type"`
	Body        string    `db:"body" json:"body"`
	Status      string    `db:"status" json:"status"`
	FlagCount   int       `db:"flag_count" json:"flag_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsHidden сообщает, скрыт ли контент от просмотра.
func (c *Content) IsHidden() bool {
	return c.Status == ContentStatusHiddenPending || c.Status == ContentStatusRemoved
}
