package mcpserver

import (
	"encoding/json"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the MCP registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes one way to launch the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable documents an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest builds server.json for the given release version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	stdio := Transport{Type: "stdio"}
	env := []EnvVariable{{
		Name:        "UCR_CONFIG",
		Description: "Path to a ucr.toml, ucr.yaml, or ucr.json config file",
	}}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/ucr",
		Description: "Unused code ratio checks for classroom submissions",
		Version:     version,
		Repository:  &Repository{URL: "https://github.com/panbanda/ucr", Source: "github"},
		Packages: []Package{
			{
				RegistryType:         "oci",
				Identifier:           "ghcr.io/panbanda/ucr:" + version,
				PackageArguments:     []Argument{{Type: "positional", Value: "mcp"}},
				EnvironmentVariables: env,
				Transport:            stdio,
			},
		},
	}, "", "  ")
}
