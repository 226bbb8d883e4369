package mock

import (
	"context"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Completer = (*Completer)(nil)

// Completer is a mock implementation of lexicon.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, system, prompt string) (string, error)
}

func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	return c.CompleteFn(ctx, system, prompt)
}
