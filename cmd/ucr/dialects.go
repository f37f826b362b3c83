package main

import (
	"strings"

	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/pkg/dialect"
	"github.com/urfave/cli/v2"
)

func dialectsCmd() *cli.Command {
	return &cli.Command{
		Name:   "dialects",
		Usage:  "List the known dialects and their markers",
		Action: runDialectsCmd,
	}
}

func runDialectsCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	var (
		rows     [][]string
		dialects []dialect.Dialect
	)
	def := reg.Default().Name
	for _, name := range reg.Names() {
		d, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		dialects = append(dialects, d)
		label := d.Name
		if d.Name == def {
			label += " (default)"
		}
		rows = append(rows, []string{
			label,
			strings.Join(d.Extensions, " "),
			d.ClassStart + " / " + d.ClassEnd,
			strings.Join(d.MethodStarts, ", "),
			d.CommentMarker,
			d.ImportMarker,
		})
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable("Dialects",
		[]string{"Name", "Extensions", "Class", "Methods", "Comment", "Import"},
		rows, nil, dialects))
}
