// Package slog provides logging decorators for lexicon services using the
// standard library's structured logger.
package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a landing-page Fetcher. Successful fetches are
// logged at debug level; failures at warn, since they become extraction
// errors on the content item.
type LoggingFetcher struct {
	next   lexicon.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next lexicon.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the page size and time.
func (f *LoggingFetcher) Fetch(ctx context.Context, link string) (html string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"host", host(link),
			"url", link,
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if err != nil {
			f.logger.Warn("fetch landing page", append(attrs, "error", lexicon.ErrorMessage(err))...)
			return
		}
		f.logger.Debug("fetch landing page", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, link)
}

func host(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Host
}
