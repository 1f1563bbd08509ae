// Command squawk lints PostgreSQL migration files for statements that take
// dangerous locks or break running clients.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], streams{
		stdin:       os.Stdin,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	})
	stop()
	os.Exit(code)
}
