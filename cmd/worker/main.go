package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"soundtik/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run the outbox relay, end-date completer and event consumers.
func main() {
	log.Println("soundtik worker starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker(ctx)
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		log.Printf("worker shutdown close failed: %v", err)
	}
	if runErr != nil {
		log.Fatalf("soundtik worker stopped with error: %v", runErr)
	}
}
