package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.CheckpointService = (*CheckpointService)(nil)

// CheckpointService is a mock implementation of meddict.CheckpointService.
type CheckpointService struct {
	SaveCheckpointFn       func(ctx context.Context, cp *meddict.Checkpoint) error
	LoadLatestCheckpointFn func(ctx context.Context) (*meddict.Checkpoint, error)
}

func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *meddict.Checkpoint) error {
	return s.SaveCheckpointFn(ctx, cp)
}

func (s *CheckpointService) LoadLatestCheckpoint(ctx context.Context) (*meddict.Checkpoint, error) {
	return s.LoadLatestCheckpointFn(ctx)
}
