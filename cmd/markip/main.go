// The markip binary is the command line client for the
// MarkIP-Intelligence API server.
package main

import (
	"os"

	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
