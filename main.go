package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/cmdpalette/cmd"
	"github.com/atomicstack/cmdpalette/internal/logging"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = cmd.ExitCode(err)
	}
	logging.Sync()
	os.Exit(exitCode)
}
