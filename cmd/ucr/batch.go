package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/panbanda/ucr/internal/manifest"
	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/progress"
	"github.com/panbanda/ucr/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

func batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Check many submissions from a manifest or a directory",
		ArgsUsage: "[manifest.yaml]",
		Description: `Checks every submission listed in a YAML manifest:

  defaults:
    class: Program
    method: Main
  submissions:
    - path: alice/Program.vb
    - path: bob/Module1.vb
      method: Start

or, with --dir, every supported file under a directory sharing one entry
point. Files matching exclude patterns, excluded directories, and
.gitignore are skipped.

Examples:
  ucr batch submissions.yaml
  ucr batch --dir ./hw3 --class Program --method Main -f markdown`,
		Flags: append(entryFlags(false),
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Scan this directory instead of reading a manifest",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel workers (default: config, then 2x CPUs)",
			},
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Read every submission from this git revision",
			},
			&cli.BoolFlag{
				Name:  "fail-on-flag",
				Usage: "Exit with status 2 when any submission is flagged",
			},
			&cli.StringFlag{
				Name:  "emit-manifest",
				Usage: "With --dir, write the files found as a manifest to this path instead of checking them",
			},
		),
		Action: runBatchCmd,
	}
}

func runBatchCmd(c *cli.Context) error {
	dir := c.String("dir")
	if dir == "" && c.NArg() != 1 {
		return fmt.Errorf("expected a manifest path or --dir")
	}
	if dir != "" && (c.String("class") == "" || c.String("method") == "") {
		return fmt.Errorf("--dir requires --class and --method")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}

	var items []manifest.Item
	skipped := 0
	if dir != "" {
		items, skipped, err = svc.Collect(analysis.DirRequest{
			Root:    dir,
			Class:   c.String("class"),
			Method:  c.String("method"),
			Dialect: c.String("dialect"),
		})
	} else {
		items, err = manifest.Load(c.Args().First())
	}
	if err != nil {
		return err
	}
	if skipped > 0 {
		warn("Skipped %d files larger than %d bytes", skipped, cfg.Analysis.MaxFileSize)
	}
	if len(items) == 0 {
		warn("No submissions found")
		return nil
	}
	if path := c.String("emit-manifest"); path != "" {
		return writeManifest(path, items)
	}

	tracker := progress.NewTracker("Checking submissions...", len(items), progress.Enabled())
	result, err := svc.Batch(c.Context, items, analysis.BatchOptions{
		Workers:    c.Int("workers"),
		Rev:        c.String("rev"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := output.NewBatchReport(result.Results, result.Errors, result.Summary)
	if err := formatter.Output(report); err != nil {
		return err
	}

	if result.Summary.Flagged > 0 && c.Bool("fail-on-flag") {
		return cli.Exit("", exitFlagged)
	}
	return nil
}

// writeManifest saves items with paths relative to the manifest's directory,
// so the file can be moved together with the submissions.
func writeManifest(path string, items []manifest.Item) error {
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}
	for i := range items {
		abs, err := filepath.Abs(items[i].Path)
		if err != nil {
			return err
		}
		if rel, err := filepath.Rel(base, abs); err == nil {
			items[i].Path = filepath.ToSlash(rel)
		}
	}

	data, err := manifest.Encode(items)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	color.Green("Wrote %d submissions to %s", len(items), path)
	return nil
}
