// Package command provides CLI command definitions for minikv-cli.
//
// It uses urfave/cli/v2 for command parsing. Every subcommand dials
// the server, runs one request and prints the decoded reply.
package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/okrski/minikv/internal/cli/client"
	"github.com/okrski/minikv/internal/infra/buildinfo"
	"github.com/okrski/minikv/internal/protocol"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "minikv-cli",
		Usage:   "minikv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			ConfigCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "minikv server address (host:port)",
			EnvVars: []string{"MINIKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: client.DefaultTimeout,
		},
	}
}

// roundTrip dials the server from the global flags, sends one command
// and prints the reply. A SimpleError reply becomes a non-zero exit.
func roundTrip(c *cli.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	conn, err := client.Dial(ctx, c.String("server"), client.WithTimeout(c.Duration("timeout")))
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := conn.Do(args...)
	if err != nil {
		return err
	}

	if resp.Type == protocol.TypeSimpleError {
		return fmt.Errorf("server: %s", resp.Str)
	}

	fmt.Fprintln(c.App.Writer, resp.String())
	return nil
}
