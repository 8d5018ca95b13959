// Command creditpv prices credit trades from a YAML trade file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/meenmo/credlib/cmd/creditpv/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
