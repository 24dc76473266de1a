package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/subcommands"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/app"
)

// serveCmd implements the "serve" command.
type serveCmd struct {
	configFile *string
	port       int

	logger *slog.Logger
	stderr io.Writer
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs the HTTP API" }
func (*serveCmd) Usage() string {
	return `serve [-port n]

Serves report generation, listing and download under /api/v1/reports, health
checks under /api/health and Prometheus metrics on /metrics until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "listen port (default: the configured server port)")
}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, stderr := writers(nil, c.stderr)

	cfg, err := loadConfig(c.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.port != 0 {
		if c.port < 0 || c.port > 65535 {
			fmt.Fprintf(stderr, "Error: invalid port %d\n", c.port)
			return subcommands.ExitUsageError
		}
		cfg.Server.Port = c.port
	}

	logger, err := commandLogger(c.logger, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
