package main

import (
	"fmt"

	"github.com/fwojciec/meddict"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.Name, c.Question)
	if err != nil {
		if meddict.ErrorCode(err) == meddict.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no stored medicines match %q. Use 'meddict crawl --keyword %s' to fetch some first.\n",
				c.Name, c.Name)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
