package meddict

import "context"

// Asker provides natural language question answering over stored medicines.
type Asker interface {
	// Ask answers a question about the medicines whose names match name.
	// Returns ENOTFOUND if no matching medicines are stored.
	Ask(ctx context.Context, name string, question string) (string, error)
}
