package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/meddict"
)

// Ensure CheckpointService implements meddict.CheckpointService at compile time.
var _ meddict.CheckpointService = (*CheckpointService)(nil)

// CheckpointService persists crawl checkpoints as timestamped JSON files.
type CheckpointService struct {
	dir string
}

// NewCheckpointService creates a CheckpointService that writes to dir.
func NewCheckpointService(dir string) *CheckpointService {
	return &CheckpointService{dir: dir}
}

// SaveCheckpoint writes the checkpoint to a timestamped file. Saves within
// the same second overwrite each other, keeping only the newest progress,
// which is the one resume wants.
func (s *CheckpointService) SaveCheckpoint(ctx context.Context, cp *meddict.Checkpoint) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}

	name := "checkpoint_" + time.Now().Format("20060102_150405") + ".json"
	return os.WriteFile(filepath.Join(s.dir, name), data, 0644)
}

// LoadLatestCheckpoint returns the checkpoint from the most recently
// modified checkpoint file. Returns ENOTFOUND when no checkpoint exists.
func (s *CheckpointService) LoadLatestCheckpoint(ctx context.Context) (*meddict.Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, meddict.Errorf(meddict.ENOTFOUND, "no checkpoint found")
		}
		return nil, err
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "checkpoint_") || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = entry.Name()
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return nil, meddict.Errorf(meddict.ENOTFOUND, "no checkpoint found")
	}

	data, err := os.ReadFile(filepath.Join(s.dir, latest))
	if err != nil {
		return nil, err
	}
	var cp meddict.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
