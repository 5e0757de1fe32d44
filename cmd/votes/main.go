package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/civicdata/rollcall/app/votes"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := votes.Initialize(ctx)

	err := app.Start(ctx)
	cancel()
	if err != nil {
		app.Logger.Error("Vote sync failed", zap.Error(err))
		os.Exit(1)
	}
}
