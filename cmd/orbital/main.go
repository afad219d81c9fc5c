// Command orbital renders hydrogen orbitals with a progressively refined
// tetrahedral mesh.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/soypat/orbital/internal/cli"
)

func init() {
	runtime.LockOSThread() // For GL.
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root := cli.NewRootCommand(newViewCommand)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
