package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/ucr/internal/cache"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the verdict cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size and age",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached verdict",
				Action: runCacheClear,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
}

func runCacheStats(c *cli.Context) error {
	vc, err := openCache(c)
	if err != nil {
		return err
	}
	if !vc.Enabled() {
		color.Yellow("Cache is disabled")
		return nil
	}
	st, err := vc.GetStats()
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Entries:    %d\n", st.Entries)
	fmt.Fprintf(w, "Total size: %d bytes\n", st.TotalSize)
	if st.Entries > 0 {
		fmt.Fprintf(w, "Oldest:     %s\n", st.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:     %s\n", st.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	vc, err := openCache(c)
	if err != nil {
		return err
	}
	if err := vc.Clear(); err != nil {
		return err
	}
	color.Green("Cache cleared")
	return nil
}
