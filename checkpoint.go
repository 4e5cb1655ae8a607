package meddict

import (
	"context"
	"time"
)

// Checkpoint records crawl progress so an interrupted run can resume.
type Checkpoint struct {
	// Mode is the crawl mode the checkpoint belongs to ("urls", "listing",
	// "keyword", "probe").
	Mode string `json:"mode"`

	// Keyword is the search keyword for keyword-mode crawls.
	Keyword string `json:"keyword,omitempty"`

	// Page is the last fully processed listing page.
	Page int `json:"page,omitempty"`

	// Processed and Saved count URLs handled so far.
	Processed int `json:"processed"`
	Saved     int `json:"saved"`

	CreatedAt time.Time `json:"createdAt"`
}

// CheckpointService persists and restores crawl checkpoints.
type CheckpointService interface {
	// SaveCheckpoint persists a checkpoint.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	// LoadLatestCheckpoint returns the most recent checkpoint.
	// Returns ENOTFOUND if no checkpoint exists.
	LoadLatestCheckpoint(ctx context.Context) (*Checkpoint, error)
}
