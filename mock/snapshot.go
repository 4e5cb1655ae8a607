package mock

import "github.com/fwojciec/meddict"

var _ meddict.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of meddict.SnapshotStore.
type SnapshotStore struct {
	SaveSnapshotFn func(url, html string) (string, error)
}

func (s *SnapshotStore) SaveSnapshot(url, html string) (string, error) {
	return s.SaveSnapshotFn(url, html)
}
