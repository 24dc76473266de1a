// Command bhavcopy turns an end-of-day bhavcopy into a workbook with an
// "ALL SCRIPS" sheet and one sheet per registered client.
//
// Usage:
//
//	bhavcopy generate [-date ddmmyy|dd/mm/yy] [-custom url] [-exchange A,B] [-input A=path] ...
//	bhavcopy serve [-port n]
//	bhavcopy init-registry [-registry path]
//	bhavcopy version
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configFile = flag.String("config", "", "path to a YAML configuration file (default: bhavcopy.yaml if present)")

// register adds every command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&generateCmd{configFile: configFile}, "reports")
	c.Register(&serveCmd{configFile: configFile}, "reports")
	c.Register(&initRegistryCmd{configFile: configFile}, "clients")
	c.Register(&versionCmd{}, "")
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
