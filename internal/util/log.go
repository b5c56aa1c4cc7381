package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const ctxKeyDisableLogger contextKey = "disableLogger"

// LogFromContext returns a request-scoped logger if one exists on the
// context, falling back to the global logger otherwise.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		if ShouldDisableLogger(ctx) {
			return l
		}
		l = &log.Logger
	}
	return l
}

// DisableLogger forces LogFromContext to return a disabled logger for this
// context and its children.
func DisableLogger(ctx context.Context, shouldDisable bool) context.Context {
	return context.WithValue(ctx, ctxKeyDisableLogger, shouldDisable)
}

// ShouldDisableLogger reports whether logging was explicitly disabled on the
// context.
func ShouldDisableLogger(ctx context.Context) bool {
	disable, ok := ctx.Value(ctxKeyDisableLogger).(bool)
	if !ok {
		return false
	}
	return disable
}
