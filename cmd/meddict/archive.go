package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
)

// Run executes the archive command.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	content, err := deps.Contents.ExtractContent(html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	markdown, err := deps.Converter.Convert(content.HTML)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	path, err := deps.Archive.WriteArchive(c.URL, content.Title, markdown)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	title := content.Title
	if title == "" {
		title = c.URL
	}
	fmt.Fprintf(deps.Stdout, "Archived %q to %s\n", title, path)
	return nil
}
