package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/meddict"
	meddicthttp "github.com/fwojciec/meddict/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid JPEG header bytes for test fixtures.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}

func TestImageDownloader_DownloadImage(t *testing.T) {
	t.Parallel()

	t.Run("saves the image and returns its path", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
			assert.Equal(t, meddict.SourceBaseURL+"/", r.Header.Get("Referer"))
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(jpegBytes)
		}))
		defer server.Close()

		dir := t.TempDir()
		d := meddicthttp.NewImageDownloader(dir)

		path, err := d.DownloadImage(context.Background(), server.URL+"/medicine/2134746.jpg")
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, ".jpg"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, jpegBytes, data)
	})

	t.Run("returns the same path for the same URL", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(jpegBytes)
		}))
		defer server.Close()

		d := meddicthttp.NewImageDownloader(t.TempDir())

		first, err := d.DownloadImage(context.Background(), server.URL+"/medicine/2134746.jpg")
		require.NoError(t, err)
		second, err := d.DownloadImage(context.Background(), server.URL+"/medicine/2134746.jpg")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("derives the extension from the content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 0x50, 0x4E, 0x47})
		}))
		defer server.Close()

		d := meddicthttp.NewImageDownloader(t.TempDir())

		path, err := d.DownloadImage(context.Background(), server.URL+"/medicine/2134746")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, ".png"))
	})

	t.Run("rejects non-image responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>not found</body></html>"))
		}))
		defer server.Close()

		dir := t.TempDir()
		d := meddicthttp.NewImageDownloader(dir)

		_, err := d.DownloadImage(context.Background(), server.URL+"/medicine/2134746.jpg")
		require.Error(t, err)
		assert.Equal(t, meddict.EINTERNAL, meddict.ErrorCode(err))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("returns EINVALID for an empty URL", func(t *testing.T) {
		t.Parallel()

		d := meddicthttp.NewImageDownloader(t.TempDir())

		_, err := d.DownloadImage(context.Background(), "")
		require.Error(t, err)
		assert.Equal(t, meddict.EINVALID, meddict.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for a missing image", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		d := meddicthttp.NewImageDownloader(t.TempDir())

		_, err := d.DownloadImage(context.Background(), server.URL+"/medicine/404.jpg")
		require.Error(t, err)
		assert.Equal(t, meddict.ENOTFOUND, meddict.ErrorCode(err))
	})
}
