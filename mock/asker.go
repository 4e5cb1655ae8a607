package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.Asker = (*Asker)(nil)

// Asker is a mock implementation of meddict.Asker.
type Asker struct {
	AskFn func(ctx context.Context, name, question string) (string, error)
}

func (a *Asker) Ask(ctx context.Context, name, question string) (string, error) {
	return a.AskFn(ctx, name, question)
}
