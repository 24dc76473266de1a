package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/registry"
)

// initRegistryCmd implements the "init-registry" command.
type initRegistryCmd struct {
	configFile *string
	path       string

	stdout io.Writer
	stderr io.Writer
}

func (*initRegistryCmd) Name() string     { return "init-registry" }
func (*initRegistryCmd) Synopsis() string { return "creates a client registry template" }
func (*initRegistryCmd) Usage() string {
	return `init-registry [-registry file]

Creates the client registry with a commented example line. Each client is one
line of the form NAME:SCRIP1;SCRIP2;SCRIP3. An existing registry is left as is.
`
}

func (c *initRegistryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "registry", "", "client registry file (default Clients.txt in the base directory)")
}

func (c *initRegistryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stdout, stderr := writers(c.stdout, c.stderr)

	path := c.path
	if path == "" {
		cfg, err := loadConfig(c.configFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		paths, err := config.GetPaths(cfg.Paths)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		path = paths.RegistryFile
	}

	if config.FileExists(path) {
		fmt.Fprintf(stderr, "Warning: %s already exists, left unchanged\n", path)
		return subcommands.ExitSuccess
	}
	if err := registry.WriteTemplate(path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "created %s\n", path)
	return subcommands.ExitSuccess
}
