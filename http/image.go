package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/meddict"
)

// Ensure ImageDownloader implements meddict.ImageDownloader at compile time.
var _ meddict.ImageDownloader = (*ImageDownloader)(nil)

// ImageDownloader saves entry images under a local directory. Filenames
// derive from the image URL hash so re-downloads overwrite in place
// instead of accumulating copies.
type ImageDownloader struct {
	client    *http.Client
	dir       string
	userAgent string
}

// NewImageDownloader creates an ImageDownloader writing into dir.
func NewImageDownloader(dir string) *ImageDownloader {
	return &ImageDownloader{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		dir:       dir,
		userAgent: meddict.BrowserUserAgent,
	}
}

// DownloadImage fetches imageURL and stores it, returning the local path.
// Responses that are not images are rejected.
func (d *ImageDownloader) DownloadImage(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", meddict.Errorf(meddict.EINVALID, "image URL required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Referer", meddict.SourceBaseURL+"/")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, imageURL); err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image") {
		return "", meddict.Errorf(meddict.EINTERNAL, "unexpected content type %q for %s", contentType, imageURL)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, imageFilename(imageURL, contentType))

	// Write through a temp file so a failed download never leaves a
	// truncated image behind.
	tmp, err := os.CreateTemp(d.dir, ".image-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	return path, nil
}

// imageFilename builds a stable filename from the URL hash plus an
// extension inferred from the content type (URL extension as fallback).
func imageFilename(imageURL, contentType string) string {
	ext := extensionFor(contentType)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(imageURL))
	}
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%x%s", xxhash.Sum64String(imageURL), ext)
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
