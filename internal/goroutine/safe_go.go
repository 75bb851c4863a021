package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/moderation-backend/internal/logger"
)

// SafeGo запускает фоновую горутину для побочных эффектов.
// Паника перехватывается и логируется со стеком, процесс не падает.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext вариант SafeGo для функций, которым нужен контекст.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	if r := recover(); r != nil {
		logger.Log.Errorf("Паника в фоновой горутине: %v\n%s", r, debug.Stack())
	}
}
