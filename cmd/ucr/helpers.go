package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/ucr/internal/cache"
	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/service/analysis"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// loadConfig loads the --config file, or the first config found, or the
// defaults, and validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a stderr logger; --verbose turns on analysis traces.
func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newService wires the analysis service from config and global flags.
func newService(c *cli.Context, cfg *config.Config) (*analysis.Service, error) {
	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithLogger(newLogger(c)),
	}
	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		vc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", cfg.Cache.Dir, err)
		}
		opts = append(opts, analysis.WithCache(vc))
	}
	return analysis.New(opts...)
}

// newFormatter honors --format and --output, falling back to the config.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	colored := cfg.Output.Color && !c.Bool("no-color") && !color.NoColor
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), colored)
}

// warn writes a status line to stderr so it never mixes with report output.
func warn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
}
