package fs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/meddict"
)

// ArchiveWriter writes archived pages as markdown files with frontmatter.
type ArchiveWriter struct {
	baseDir string
}

// NewArchiveWriter creates an ArchiveWriter rooted at baseDir.
func NewArchiveWriter(baseDir string) *ArchiveWriter {
	return &ArchiveWriter{baseDir: baseDir}
}

// WriteArchive writes the markdown archive of the page at sourceURL and
// returns the path of the written file. Entry pages are named by docId and
// title; everything on the source site shares the same URL path, so the
// path itself cannot name the file.
func (w *ArchiveWriter) WriteArchive(sourceURL, title, markdown string) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(w.baseDir, archiveFilename(sourceURL, title))
	content := FormatArchive(sourceURL, title, markdown, time.Now())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// FormatArchive formats an archived page with YAML frontmatter.
func FormatArchive(sourceURL, title, markdown string, crawled time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(sourceURL)
	b.WriteString("\ntitle: ")
	b.WriteString(title)
	b.WriteString("\ncrawled: ")
	b.WriteString(crawled.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(markdown)
	return b.String()
}

func archiveFilename(sourceURL, title string) string {
	docID := meddict.DocIDFromURL(sourceURL)
	name := SafeFilename(title, 50)
	switch {
	case docID != "" && name != "":
		return docID + "_" + name + ".md"
	case docID != "":
		return docID + ".md"
	case name != "":
		return name + ".md"
	default:
		return SafeFilename(sourceURL, 100) + ".md"
	}
}
