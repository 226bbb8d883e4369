package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.MappingService = (*LoggingMappingService)(nil)

// LoggingMappingService wraps a MappingService and logs writes. Reads and
// usage telemetry are delegated without logging.
type LoggingMappingService struct {
	lexicon.MappingService
	logger *slog.Logger
}

// NewLoggingMappingService creates a new LoggingMappingService.
func NewLoggingMappingService(next lexicon.MappingService, logger *slog.Logger) *LoggingMappingService {
	return &LoggingMappingService{MappingService: next, logger: logger}
}

// UpsertSeed delegates and logs whether the row was inserted.
func (s *LoggingMappingService) UpsertSeed(ctx context.Context, m *lexicon.Mapping) (inserted bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert seed",
			"category", m.Category,
			"user_term", m.UserTerm,
			"inserted", inserted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.MappingService.UpsertSeed(ctx, m)
}

// InsertSuggested delegates and logs whether the row was inserted.
func (s *LoggingMappingService) InsertSuggested(ctx context.Context, m *lexicon.Mapping) (inserted bool, err error) {
	defer func(begin time.Time) {
		s.logger.Info("insert suggested mapping",
			"category", m.Category,
			"user_term", m.UserTerm,
			"canonical_term", m.CanonicalTerm,
			"provenance", m.Provenance,
			"inserted", inserted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.MappingService.InsertSuggested(ctx, m)
}

// DeactivateMapping delegates and logs the deactivation.
func (s *LoggingMappingService) DeactivateMapping(ctx context.Context, id string) (err error) {
	defer func() {
		s.logger.Info("deactivate mapping", "id", id, "err", err)
	}()
	return s.MappingService.DeactivateMapping(ctx, id)
}
