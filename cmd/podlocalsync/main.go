package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"podlocalsync/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := commands.RootApp(commands.DefaultEnv())
	err := app.RunContext(ctx, os.Args)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, commands.ErrorText(err))
		os.Exit(1)
	}
}
