package meddict

import "context"

// BrowserUserAgent is the user agent fetchers present to the encyclopedia.
// The site serves a reduced page to clients it classifies as bots, so both
// the static and the browser-automation fetcher identify as desktop Chrome.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher retrieves entry page HTML from URLs.
// Implementations may use browser automation for pages that block or
// degrade plain HTTP clients.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	// Returns ENOTFOUND for pages that do not exist.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// ImageDownloader stores a remote image locally.
type ImageDownloader interface {
	// DownloadImage fetches the image at imageURL and saves it,
	// returning the local file path.
	DownloadImage(ctx context.Context, imageURL string) (path string, err error)
}
