package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sokinpui/wolverine.go/cli"
	"github.com/sokinpui/wolverine.go/internal/ui"
	"github.com/sokinpui/wolverine.go/wolverine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		ui.Error("Error: %v", err)
		// Check for detailed error to print stack
		var detailed *wolverine.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		stop()
		os.Exit(1)
	}
}
