package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"outreach-backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "outreachctl:", err)
		os.Exit(1)
	}
}
