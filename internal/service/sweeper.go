package service

import (
	"context"
	"time"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
)

// sweepBatchSize размер пачки просроченных апелляций за один проход.
const sweepBatchSize = 50

// SweeperAppealStore читает просроченные апелляции.
type SweeperAppealStore interface {
	ListExpiredPending(ctx context.Context, limit int) ([]models.Appeal, error)
}

// Sweeper фоновый процесс, закрывающий апелляции с истёкшим окном голосования.
// Подстраховка на случай, если по апелляции никто не пытался голосовать.
type Sweeper struct {
	appeals  SweeperAppealStore
	resolver AppealResolver
	interval time.Duration
}

// NewSweeper создаёт фоновый процесс закрытия просроченных апелляций.
func NewSweeper(appeals SweeperAppealStore, resolver AppealResolver, interval time.Duration) *Sweeper {
	return &Sweeper{
		appeals:  appeals,
		resolver: resolver,
		interval: interval,
	}
}

// Run запускает периодические проходы до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	logger.Log.Infof("Фоновое закрытие апелляций запущено, интервал %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Фоновое закрытие апелляций остановлено")
			return
		case <-ticker.C:
			resolved, err := s.Sweep(ctx)
			if err != nil {
				logger.Log.Errorf("Ошибка прохода по просроченным апелляциям: %v", err)
			}
			if resolved > 0 {
				logger.Log.Infof("Закрыто просроченных апелляций: %d", resolved)
			}
		}
	}
}

// Sweep закрывает все просроченные открытые апелляции пачками.
// Сбой по одной апелляции не прерывает проход. Проход без прогресса
// завершается, чтобы не зациклиться на апелляциях, которые не удаётся закрыть.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := s.appeals.ListExpiredPending(ctx, sweepBatchSize)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}

		resolved := 0
		for _, appeal := range batch {
			_, resolvedNow, err := s.resolver.ResolveIfPending(ctx, appeal.ID, models.ResolvedByExpiry)
			if err != nil {
				logger.Log.Errorf("Ошибка закрытия просроченной апелляции %s: %v", appeal.ID, err)
				continue
			}
			if resolvedNow {
				resolved++
			}
		}

		total += resolved

		if resolved == 0 || len(batch) < sweepBatchSize {
			return total, nil
		}
	}
}
