package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	if deps.Search == nil {
		fmt.Fprintln(deps.Stderr, "NAVER_CLIENT_ID and NAVER_CLIENT_SECRET environment variables not set. Register an application at https://developers.naver.com")
		return meddict.Errorf(meddict.EINVALID, "search requires Naver API credentials")
	}

	results, err := deps.Search.SearchMedicines(deps.Ctx, c.Keyword, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q\n", c.Keyword)
		return nil
	}

	entries := 0
	for _, r := range results {
		marker := " "
		if meddict.IsEntryURL(r.Link) {
			marker = "*"
			entries++
		}
		fmt.Fprintf(deps.Stdout, "%s %s\n  %s\n", marker, r.Title, r.Link)
	}
	fmt.Fprintf(deps.Stdout, "\n%d of %d results are medicine entries (*). Crawl one with 'meddict crawl --url <link>'.\n",
		entries, len(results))

	return nil
}
