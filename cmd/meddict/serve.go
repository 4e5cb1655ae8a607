package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	medecho "github.com/fwojciec/meddict/echo"
)

// Run executes the serve command. It blocks until the context is canceled
// or the listener fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := medecho.NewServer(deps.Medicines, deps.Extractor)

	go func() {
		<-deps.Ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(deps.Stdout, "Serving medicine API on %s\n", c.Addr)
	if err := srv.Start(c.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}
