// Command scobo runs the chat score tracker and offers offline tools over
// its event log.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/okian/scobo/internal/config"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "scobo: "+err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "scobo",
		Usage: "chat score tracker backed by an append-only event log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{config.EnvConfigFile},
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				return os.Setenv(config.EnvConfigFile, path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			boardCommand(),
			undoTargetCommand(),
		},
	}
}
