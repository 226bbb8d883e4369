package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.Completer = (*LoggingCompleter)(nil)
	_ lexicon.Searcher  = (*LoggingSearcher)(nil)
)

// LoggingCompleter wraps a Completer with logging. Prompts are not logged.
type LoggingCompleter struct {
	next   lexicon.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next lexicon.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs sizes and latency.
func (c *LoggingCompleter) Complete(ctx context.Context, system, prompt string) (reply string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("completion",
			"prompt_bytes", len(prompt),
			"reply_bytes", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, system, prompt)
}

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   lexicon.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next lexicon.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the result count.
func (s *LoggingSearcher) Search(ctx context.Context, query string, limit int) (items []*lexicon.ContentItem, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", query,
			"count", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, limit)
}
