// Package main provides the entry point for minikv-cli.
//
// minikv-cli is a small RESP client for minikv-server, covering the
// PING, ECHO, GET, SET and CONFIG GET commands.
package main

import (
	"fmt"
	"os"

	"github.com/okrski/minikv/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
