package main

import (
	"fmt"
	"io"
	"os"

	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

// exitFlagged is the exit status when --fail-on-flag trips.
const exitFlagged = 2

// entryFlags are shared by every command that needs an entry point.
func entryFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "class",
			Usage:    "Entry class name",
			Required: required,
		},
		&cli.StringFlag{
			Name:     "method",
			Aliases:  []string{"m"},
			Usage:    "Entry method name",
			Required: required,
		},
		&cli.StringFlag{
			Name:  "dialect",
			Usage: "Dialect name (default: by file extension, then the configured default)",
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check one submission for unused code",
		ArgsUsage: "<path|->",
		Description: `Reads the submission at path ("-" reads stdin) and reports whether it
is mostly unreachable from the entry method.

Examples:
  ucr check --class Program --method Main Program.vb
  ucr check --class Program --method Main --rev HEAD~1 Program.vb
  ucr check --class Program --method Main --debug -f json Program.vb`,
		Flags: append(entryFlags(true),
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Read the file from this git revision",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Include the entity table and propagation sweeps",
			},
			&cli.BoolFlag{
				Name:  "fail-on-flag",
				Usage: "Exit with status 2 when the submission is flagged",
			},
		),
		Action: runCheckCmd,
	}
}

func runCheckCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one path, got %d", c.NArg())
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}

	req := analysis.CheckRequest{
		Path:    path,
		Class:   c.String("class"),
		Method:  c.String("method"),
		Dialect: c.String("dialect"),
		Rev:     c.String("rev"),
	}
	if path == "-" {
		if req.Rev != "" {
			return fmt.Errorf("--rev cannot be combined with stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		req.Path = ""
		req.Source = string(data)
	}

	result, err := svc.Check(c.Context, req)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewVerdictReport(result, c.Bool("debug"))); err != nil {
		return err
	}

	if result.Flagged() && c.Bool("fail-on-flag") {
		return cli.Exit("", exitFlagged)
	}
	return nil
}
