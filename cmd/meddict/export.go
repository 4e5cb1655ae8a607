package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/fs"
	"github.com/fwojciec/meddict/xlsx"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	if c.Split && c.Format != "json" {
		err := meddict.Errorf(meddict.EINVALID, "split export only supports the json format")
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	n, out, err := c.export(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d medicines to %s\n", n, out)
	return nil
}

func (c *ExportCmd) export(deps *Dependencies) (int, string, error) {
	switch {
	case c.Format == "xlsx":
		out := c.Out
		if out == "" {
			out = "medicines.xlsx"
		}
		n, err := xlsx.NewExporter(deps.Medicines).ExportFile(deps.Ctx, out)
		return n, out, err
	case c.Split:
		out := c.Out
		if out == "" {
			out = "medicines"
		}
		n, err := fs.NewExporter(deps.Medicines).ExportSplit(deps.Ctx, out)
		return n, out, err
	default:
		out := c.Out
		if out == "" {
			out = "medicines.json"
		}
		n, err := fs.NewExporter(deps.Medicines).ExportJSON(deps.Ctx, out)
		return n, out, err
	}
}
