package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/service/analysis"
	"github.com/panbanda/ucr/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-check submissions whenever they change",
		ArgsUsage: "[path]",
		Flags: append(entryFlags(true),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Wait this long after the last write before re-checking",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	path := "."
	if c.NArg() > 0 {
		path = c.Args().First()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	watcher, err := watch.NewWatcher(absPath, cfg, svc.Dialects(), c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	watcher.SetCallback(func(changed string) {
		result, err := svc.Check(c.Context, analysis.CheckRequest{
			Path:    changed,
			Class:   c.String("class"),
			Method:  c.String("method"),
			Dialect: c.String("dialect"),
		})
		if err != nil {
			color.Red("Check error: %v", err)
			return
		}
		if err := formatter.Output(output.NewVerdictReport(result, false)); err != nil {
			color.Red("Output error: %v", err)
		}
	})

	err = watcher.Start(c.Context)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nStopping watch...")
		return nil
	}
	return err
}
