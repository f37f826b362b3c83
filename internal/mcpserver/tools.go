package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/service/analysis"
	"github.com/panbanda/ucr/pkg/dialect"
)

// CheckInput is the input of check_unused_code.
type CheckInput struct {
	Source  string `json:"source,omitempty" jsonschema:"Submission source text. Takes precedence over path."`
	Path    string `json:"path,omitempty" jsonschema:"Submission file to read when source is empty. Also used to pick the dialect by extension."`
	Class   string `json:"class" jsonschema:"Name of the class holding the entry method."`
	Method  string `json:"method" jsonschema:"Name of the entry method."`
	Dialect string `json:"dialect,omitempty" jsonschema:"Dialect name. Defaults to the one matching the path extension, else the configured default."`
	Rev     string `json:"rev,omitempty" jsonschema:"Git revision to read path from instead of the working tree."`
	Debug   bool   `json:"debug,omitempty" jsonschema:"Include the entity table and propagation sweeps."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DirectoryInput is the input of check_unused_directory.
type DirectoryInput struct {
	Path    string `json:"path,omitempty" jsonschema:"Directory to scan. Defaults to the current directory."`
	Class   string `json:"class" jsonschema:"Entry class shared by every submission."`
	Method  string `json:"method" jsonschema:"Entry method shared by every submission."`
	Dialect string `json:"dialect,omitempty" jsonschema:"Force a dialect instead of detecting it per file."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DialectsInput is the input of list_dialects.
type DialectsInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleCheck(ctx context.Context, req *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, any, error) {
	if input.Source == "" && input.Path == "" {
		return toolError("either source or path is required")
	}

	result, err := s.svc.Check(ctx, analysis.CheckRequest{
		Path:    input.Path,
		Source:  input.Source,
		Class:   input.Class,
		Method:  input.Method,
		Dialect: input.Dialect,
		Rev:     input.Rev,
	})
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(output.NewVerdictReport(result, input.Debug).RenderData(), getFormat(input.Format))
}

func (s *Server) handleDirectory(ctx context.Context, req *mcp.CallToolRequest, input DirectoryInput) (*mcp.CallToolResult, any, error) {
	root := input.Path
	if root == "" {
		root = "."
	}

	items, skipped, err := s.svc.Collect(analysis.DirRequest{
		Root:    root,
		Class:   input.Class,
		Method:  input.Method,
		Dialect: input.Dialect,
	})
	if err != nil {
		return toolError(err.Error())
	}
	if len(items) == 0 {
		return toolError("no submission files found")
	}

	result, err := s.svc.Batch(ctx, items, analysis.BatchOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	result.Skipped = skipped

	report := output.NewBatchReport(result.Results, result.Errors, result.Summary)
	return toolResult(report.RenderData(), getFormat(input.Format))
}

func (s *Server) handleDialects(ctx context.Context, req *mcp.CallToolRequest, input DialectsInput) (*mcp.CallToolResult, any, error) {
	reg := s.svc.Dialects()
	var dialects []dialect.Dialect
	for _, name := range reg.Names() {
		d, err := reg.Lookup(name)
		if err != nil {
			return toolError(err.Error())
		}
		dialects = append(dialects, d)
	}

	out := struct {
		Default  string            `json:"default" toon:"default"`
		Dialects []dialect.Dialect `json:"dialects" toon:"dialects"`
	}{reg.Default().Name, dialects}
	return toolResult(out, getFormat(input.Format))
}
