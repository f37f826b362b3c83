package main

import (
	"fmt"

	"github.com/panbanda/ucr/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes ucr's checks
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "ucr": {
        "command": "ucr",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - check_unused_code       Verdict for one submission (source text or path)
  - check_unused_directory  Verdicts for every submission under a directory
  - list_dialects           Known dialects and their markers`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server.json registry manifest and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, svc).Run(c.Context)
}
