package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/meddict"
)

// Ensure SnapshotStore implements meddict.SnapshotStore at compile time.
var _ meddict.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore saves raw page HTML under hash-based filenames so pages
// that defeated the extractor can be inspected offline.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a SnapshotStore that writes to dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// SaveSnapshot writes html to a file named from the URL's hash and returns
// the path. Saving the same URL again overwrites the earlier snapshot.
func (s *SnapshotStore) SaveSnapshot(url, html string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%016x_debug.html", xxhash.Sum64String(url))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", err
	}
	return path, nil
}
