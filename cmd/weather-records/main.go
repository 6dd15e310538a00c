package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:        "weather-records",
		Description: "Weather lookup service with saved date-range records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"cfg"},
				Usage:   "optional YAML config file path (environment is used otherwise)",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "prune",
				Usage: "delete point searches older than --older-than",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:     "older-than",
						Usage:    "retention window, e.g. 720h",
						Required: true,
					},
				},
				Action: prune,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
