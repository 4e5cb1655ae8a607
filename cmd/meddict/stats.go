package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
)

// completenessBands partitions [0, 1] into quarters for the distribution
// printout. Highest band first; a medicine lands in the first band whose
// lower bound it clears.
var completenessBands = []struct {
	label string
	min   float64
}{
	{"75-100%", 0.75},
	{" 50-75%", 0.50},
	{" 25-50%", 0.25},
	{"  0-25%", 0.00},
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	total, err := deps.Medicines.CountMedicines(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	if total == 0 {
		fmt.Fprintln(deps.Stdout, "Store is empty. Use 'meddict crawl' to fetch entries.")
		return nil
	}

	meds, _, err := deps.Medicines.FindMedicines(deps.Ctx, meddict.MedicineFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d medicines stored\n", total)

	counts := make(map[string]int, len(completenessBands))
	for _, m := range meds {
		for _, band := range completenessBands {
			if m.Completeness >= band.min {
				counts[band.label]++
				break
			}
		}
	}

	fmt.Fprintln(deps.Stdout, "\nCompleteness:")
	for _, band := range completenessBands {
		fmt.Fprintf(deps.Stdout, "  %s  %d\n", band.label, counts[band.label])
	}

	fmt.Fprintln(deps.Stdout, "\nField coverage:")
	for _, group := range meddict.Groups() {
		present, slots := 0, 0
		for _, f := range meddict.Schema() {
			if meddict.GroupOf(f) != group {
				continue
			}
			for _, m := range meds {
				slots++
				if _, ok := m.Record.Value(f); ok {
					present++
				}
			}
		}
		fmt.Fprintf(deps.Stdout, "  %-18s %3.0f%%\n", group, 100*float64(present)/float64(slots))
	}

	if deps.Tokens != nil {
		text := meddict.FormatMedicines(meds)
		tokens, err := deps.Tokens.CountTokens(deps.Ctx, text)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "\nFormatted store: %s, %s\n",
			crawl.FormatBytes(len(text)), crawl.FormatTokens(tokens))
	}

	return nil
}
