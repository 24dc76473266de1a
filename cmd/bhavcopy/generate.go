package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/app"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/files"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/services"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// inputFlag collects repeated -input EXCHANGE=path flags.
type inputFlag map[domain.Exchange]string

func (f inputFlag) String() string {
	parts := make([]string, 0, len(f))
	for ex, p := range f {
		parts = append(parts, ex.String()+"="+p)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (f inputFlag) Set(v string) error {
	name, p, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(p) == "" {
		return fmt.Errorf("expected EXCHANGE=path, got %q", v)
	}
	ex, err := domain.ParseExchange(name)
	if err != nil {
		return err
	}
	if _, dup := f[ex]; dup {
		return fmt.Errorf("exchange %s given twice", ex)
	}
	f[ex] = strings.TrimSpace(p)
	return nil
}

// generateCmd implements the "generate" command.
type generateCmd struct {
	configFile *string

	date      string
	custom    string
	exchanges string
	inputs    inputFlag
	registry  string
	out       string
	offline   bool

	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "builds client workbooks from a bhavcopy" }
func (*generateCmd) Usage() string {
	return `generate [-date ddmmyy|dd/mm/yy] [-custom url] [-exchange A,B] [-input A=path]... [-registry file] [-out dir] [-offline]

Reads the bhavcopy of each exchange, either from -input or by downloading it,
and writes "(A) DD-MM-YYYY.xlsx" with an ALL SCRIPS sheet followed by one sheet
per client listed in the registry (Clients.txt by default).

Without -date, today's bhavcopy is used. With -custom, the date is taken from
the last six characters of the URL's file name unless -date is also given.
`
}

func (c *generateCmd) SetFlags(f *flag.FlagSet) {
	if c.inputs == nil {
		c.inputs = inputFlag{}
	}
	f.StringVar(&c.date, "date", "", "bhavcopy date as ddmmyy or dd/mm/yy (default today)")
	f.StringVar(&c.custom, "custom", "", "download the bhavcopy from this URL instead of the configured source")
	f.StringVar(&c.exchanges, "exchange", "", "comma separated exchanges to build (default: exchanges given with -input, else the configured ones)")
	f.Var(c.inputs, "input", "local bhavcopy as EXCHANGE=path, repeatable")
	f.StringVar(&c.registry, "registry", "", "client registry file (default Clients.txt in the base directory)")
	f.StringVar(&c.out, "out", "", "output directory (default: the configured reports directory)")
	f.BoolVar(&c.offline, "offline", false, "never download; exchanges without -input are skipped")
}

func (c *generateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stdout, stderr := writers(c.stdout, c.stderr)

	cfg, err := loadConfig(c.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	req, err := c.request(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
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
	defer a.Close(ctx)

	req.RegistryPath = c.registry
	if req.RegistryPath == "" {
		req.RegistryPath = a.Paths.RegistryFile
	}
	req.OutputDir = c.out
	if req.OutputDir == "" {
		req.OutputDir = a.Paths.ReportsDir
	}

	result, err := a.ReportService.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printResult(stdout, stderr, result)
	if result.Err() != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// request turns the flags into a generate request. Paths are filled by the
// caller once the configuration is resolved.
func (c *generateCmd) request(cfg *config.Config) (services.GenerateRequest, error) {
	req := services.GenerateRequest{
		Inputs:    map[domain.Exchange]string(c.inputs),
		Fetch:     !c.offline,
		CustomURL: c.custom,
	}

	switch {
	case c.date != "":
		date, err := files.ParseBhavDate(c.date)
		if err != nil {
			return req, err
		}
		req.Date = date
	case c.custom == "":
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		y, m, d := now().Date()
		req.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	switch {
	case c.exchanges != "":
		for _, s := range strings.Split(c.exchanges, ",") {
			ex, err := domain.ParseExchange(s)
			if err != nil {
				return req, err
			}
			req.Exchanges = append(req.Exchanges, ex)
		}
	case len(c.inputs) > 0:
		for _, ex := range domain.Exchanges {
			if _, ok := c.inputs[ex]; ok {
				req.Exchanges = append(req.Exchanges, ex)
			}
		}
	default:
		exchanges, err := cfg.ExchangeList()
		if err != nil {
			return req, err
		}
		req.Exchanges = exchanges
	}
	return req, nil
}

// printResult reports each outcome: written reports on stdout, notices,
// skips and failures on stderr.
func printResult(stdout, stderr io.Writer, result *services.RunResult) {
	for _, notice := range result.Notices {
		fmt.Fprintf(stderr, "Notice: %v\n", notice)
	}
	for _, o := range result.Outcomes {
		switch o.Status {
		case domain.ReportStatusWritten:
			fmt.Fprintf(stdout, "%s: wrote %s (%d scrips, %d sheets)\n", o.Exchange, o.Path, o.Rows, len(o.Sheets))
		case domain.ReportStatusSkipped:
			fmt.Fprintf(stderr, "Warning: %s: no bhavcopy for %s, skipped\n", o.Exchange, result.Date.Format("02-01-2006"))
		case domain.ReportStatusFailed:
			// Extraction errors already name the file and row.
			fmt.Fprintf(stderr, "Error: %s: %v\n", o.Exchange, o.Err)
		}
	}
}

func loadConfig(configFile *string) (*config.Config, error) {
	name := ""
	if configFile != nil {
		name = *configFile
	}
	return config.Load(name)
}

func commandLogger(logger *slog.Logger, cfg *config.Config) (*slog.Logger, error) {
	if logger != nil {
		return logger, nil
	}
	return app.InitializeLogger(cfg)
}

func writers(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
