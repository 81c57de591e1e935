package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"soundtik/internal/app/bootstrap"
)

// soundtikctl is the operator CLI: admin review, campaign lookups and reach
// estimates. It loads the same configuration as the API.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(func(ctx context.Context) (backend, error) {
		return bootstrap.BuildCLI(ctx)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
