package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of meddict.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ meddict.ImageDownloader = (*ImageDownloader)(nil)

// ImageDownloader is a mock implementation of meddict.ImageDownloader.
type ImageDownloader struct {
	DownloadImageFn func(ctx context.Context, imageURL string) (string, error)
}

func (d *ImageDownloader) DownloadImage(ctx context.Context, imageURL string) (string, error) {
	return d.DownloadImageFn(ctx, imageURL)
}
