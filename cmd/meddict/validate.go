package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
)

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	url := meddict.NormalizeEntryURL(c.URL)
	if !meddict.IsEntryURL(url) {
		err := meddict.Errorf(meddict.EINVALID, "%q is not a medicine entry URL", c.URL)
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	stored, err := deps.Medicines.FindMedicineByURL(deps.Ctx, url)
	if err != nil {
		if meddict.ErrorCode(err) == meddict.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: entry not in the store. Use 'meddict crawl --url %s' to fetch it first.\n", url)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	html, err := deps.Fetcher.Fetch(deps.Ctx, stored.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	fresh, report := deps.Extractor.Extract(html, stored.URL)
	result, err := meddict.Score(fresh, &stored.Record, meddict.DefaultValidationFields())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	name := stored.Record.KoreanName
	if name == "" {
		name = stored.URL
	}
	fmt.Fprintf(deps.Stdout, "Validation for %s\n\n", name)
	for _, f := range result.Fields {
		verdict := "ok"
		if !result.Validation[f] {
			verdict = "MISMATCH"
		}
		fmt.Fprintf(deps.Stdout, "  %-15s %s\n", f, verdict)
	}
	fmt.Fprintf(deps.Stdout, "\n%.0f%% of fields match; fresh extraction yielded %d of %d fields\n",
		result.ExtractionCompleteness*100, len(report.ExtractedFields), meddict.SchemaSize())

	return nil
}
