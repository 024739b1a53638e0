package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stderr)
	err := newRootCmd(a).ExecuteContext(ctx)
	if err != nil {
		a.logger.Error("command failed", "error", err)
	}

	a.close()
	stop()

	if err != nil {
		os.Exit(1)
	}
}
