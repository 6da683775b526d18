package pushdown

import (
	"context"
	"log/slog"
	"time"
)

// Logger provides observation hooks for machine execution. It receives
// every applied transition, including fault-triggered ones, with enough
// detail to reconstruct the path to a terminal or error state after the
// fact. A nil logger means transitions are silent.
type Logger interface {
	StateEntered(ctx context.Context, state string, depth int)
	StateExited(ctx context.Context, state string, held time.Duration, err error)
	TransitionApplied(ctx context.Context, tr Transition)
}

// SlogLogger implements Logger using slog.
type SlogLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger backed by slog.Default().
func NewDefaultLogger() *SlogLogger {
	return &SlogLogger{logger: slog.Default()}
}

// NewSlogLogger creates a logger backed by the given slog.Logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) StateEntered(ctx context.Context, state string, depth int) {
	l.logger.InfoContext(ctx, "State entered",
		"state", state,
		"depth", depth,
	)
}

func (l *SlogLogger) StateExited(ctx context.Context, state string, held time.Duration, err error) {
	fields := []any{
		"state", state,
		"held_ms", held.Milliseconds(),
	}

	if err != nil {
		l.logger.ErrorContext(ctx, "State exited with fault", append(fields, "error", err)...)
	} else {
		l.logger.InfoContext(ctx, "State exited", fields...)
	}
}

func (l *SlogLogger) TransitionApplied(ctx context.Context, tr Transition) {
	fields := []any{
		"machine", tr.Machine,
		"from", tr.From,
		"to", tr.To,
		"kind", tr.Kind.String(),
		"cause", tr.Cause.String(),
		"depth", tr.Depth,
		"tick", tr.Tick,
	}

	if tr.Fault != nil {
		l.logger.ErrorContext(ctx, "Transition applied", append(fields, "fault", tr.Fault)...)
	} else {
		l.logger.InfoContext(ctx, "Transition applied", fields...)
	}
}
