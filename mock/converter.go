package mock

import "github.com/fwojciec/meddict"

var _ meddict.Converter = (*Converter)(nil)

// Converter is a mock implementation of meddict.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
