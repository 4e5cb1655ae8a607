package meddict

// SnapshotStore archives raw page HTML for offline inspection. The crawler
// saves a snapshot when extraction comes back empty so the page can be
// examined without refetching it.
type SnapshotStore interface {
	// SaveSnapshot writes the HTML fetched from url and returns the path of
	// the written file.
	SaveSnapshot(url, html string) (string, error)
}
