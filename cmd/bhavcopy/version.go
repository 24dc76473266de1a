package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts"
)

// versionCmd implements the "version" command.
type versionCmd struct {
	stdout io.Writer
}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "prints build information" }
func (*versionCmd) Usage() string            { return "version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stdout, _ := writers(c.stdout, nil)
	fmt.Fprintln(stdout, contracts.GetFullVersionString())
	return subcommands.ExitSuccess
}
