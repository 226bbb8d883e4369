package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.StepObserver = (*StepLogger)(nil)

// StepLogger logs each finished maintenance step. Failed steps are logged
// at error level, warnings at warn level.
type StepLogger struct {
	logger *slog.Logger
}

// NewStepLogger creates a new StepLogger.
func NewStepLogger(logger *slog.Logger) *StepLogger {
	return &StepLogger{logger: logger}
}

// ObserveStep logs the step's outcome.
func (l *StepLogger) ObserveStep(ctx context.Context, step lexicon.StepResult) {
	level := slog.LevelInfo
	switch step.Status {
	case lexicon.StatusFail:
		level = slog.LevelError
	case lexicon.StatusWarn:
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "maintenance step",
		"step", step.Name,
		"status", step.Status,
		"issues", len(step.Issues),
		"duration", step.Duration,
	)
}
