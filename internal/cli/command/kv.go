package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

// PingCommand checks server liveness.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check server liveness",
		Action: func(c *cli.Context) error {
			return roundTrip(c, "PING")
		},
	}
}

// EchoCommand sends a message and prints the server's copy of it.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("echo requires exactly one argument")
			}
			return roundTrip(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand reads a key.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("get requires exactly one argument")
			}
			return roundTrip(c, "GET", c.Args().First())
		},
	}
}

// SetCommand writes a key, exposing the full option grammar as flags.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "nx",
				Usage: "Only set if the key does not exist",
			},
			&cli.BoolFlag{
				Name:  "xx",
				Usage: "Only set if the key already exists",
			},
			&cli.BoolFlag{
				Name:  "get",
				Usage: "Return the old value stored at the key",
			},
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after `SECONDS`",
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after `MILLISECONDS`",
			},
			&cli.Int64Flag{
				Name:  "exat",
				Usage: "Expire at `UNIX-SECONDS`",
			},
			&cli.Int64Flag{
				Name:  "pxat",
				Usage: "Expire at `UNIX-MILLISECONDS`",
			},
			&cli.BoolFlag{
				Name:  "keepttl",
				Usage: "Retain the key's existing expiry",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("set requires exactly two arguments")
			}

			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			if c.Bool("nx") {
				args = append(args, "NX")
			}
			if c.Bool("xx") {
				args = append(args, "XX")
			}
			if c.Bool("get") {
				args = append(args, "GET")
			}
			for _, opt := range []string{"ex", "px", "exat", "pxat"} {
				if c.IsSet(opt) {
					args = append(args, strings.ToUpper(opt), strconv.FormatInt(c.Int64(opt), 10))
				}
			}
			if c.Bool("keepttl") {
				args = append(args, "KEEPTTL")
			}

			return roundTrip(c, args...)
		},
	}
}

// ConfigCommand reads server configuration parameters.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "config",
		Usage:     "Inspect server configuration",
		ArgsUsage: "PARAMETER [PARAMETER...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("config requires at least one parameter name")
			}
			args := append([]string{"CONFIG", "GET"}, c.Args().Slice()...)
			return roundTrip(c, args...)
		},
	}
}
