package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/ucr/pkg/analyzer/unused"
	"github.com/panbanda/ucr/pkg/dialect"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for ucr.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Verdict thresholds
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Entity capacity limits
	Capacity CapacityConfig `koanf:"capacity" toml:"capacity"`

	// Custom dialects, registered alongside the built-ins
	Dialects []dialect.Dialect `koanf:"dialects" toml:"dialects"`

	// File exclusion patterns for directory batches
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls how submissions are read and analyzed.
type AnalysisConfig struct {
	Dialect     string `koanf:"dialect" toml:"dialect"`
	MaxFileSize int    `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = no limit
	Workers     int    `koanf:"workers" toml:"workers"`             // 0 = 2x NumCPU
}

// ThresholdConfig defines the two verdict limits.
type ThresholdConfig struct {
	CodeLimit        int     `koanf:"code_limit" toml:"code_limit"`
	CodePercentLimit float64 `koanf:"code_percent_limit" toml:"code_percent_limit"`
}

// CapacityConfig bounds the entity registry.
type CapacityConfig struct {
	MaxClasses int `koanf:"max_classes" toml:"max_classes"`
	MaxMethods int `koanf:"max_methods" toml:"max_methods"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	thresholds := unused.DefaultThresholds()
	capacity := unused.DefaultCapacity()
	return &Config{
		Analysis: AnalysisConfig{
			Dialect:     "vb",
			MaxFileSize: 1 << 20,
		},
		Thresholds: ThresholdConfig{
			CodeLimit:        thresholds.CodeLimit,
			CodePercentLimit: thresholds.CodePercentLimit,
		},
		Capacity: CapacityConfig{
			MaxClasses: capacity.MaxClasses,
			MaxMethods: capacity.MaxMethods,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.Designer.vb",
				"AssemblyInfo.vb",
			},
			Dirs: []string{
				".git",
				".ucr",
				"bin",
				"obj",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".ucr/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		// Default to TOML
		return toml.Parser()
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"ucr.toml",
	"ucr.yaml",
	"ucr.yml",
	"ucr.json",
	".ucr.toml",
	".ucr.yaml",
	".ucr.yml",
	".ucr.json",
}

// Find returns the first config file in the standard locations, or "".
func Find() string {
	for _, dir := range []string{".", ".ucr"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads path when given, otherwise the first config found in
// the standard locations, otherwise the defaults. It returns the source path
// ("" for defaults).
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, path, nil
}

// Validate checks value ranges and that every dialect resolves.
func (c *Config) Validate() error {
	if err := c.UnusedThresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Capacity.MaxClasses < 0 || c.Capacity.MaxMethods < 0 {
		return fmt.Errorf("%w: capacity limits must be >= 0", ErrInvalidConfig)
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must be >= 0", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive when the cache is enabled", ErrInvalidConfig)
	}
	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Registry builds a dialect registry with the built-ins, the configured
// custom dialects, and the configured default.
func (c *Config) Registry() (*dialect.Registry, error) {
	reg := dialect.NewRegistry()
	for _, d := range c.Dialects {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	if c.Analysis.Dialect != "" {
		if err := reg.SetDefault(c.Analysis.Dialect); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// UnusedThresholds converts the threshold section for the analyzer.
func (c *Config) UnusedThresholds() unused.Thresholds {
	return unused.Thresholds{
		CodeLimit:        c.Thresholds.CodeLimit,
		CodePercentLimit: c.Thresholds.CodePercentLimit,
	}
}

// UnusedCapacity converts the capacity section for the analyzer.
func (c *Config) UnusedCapacity() unused.Capacity {
	return unused.Capacity{
		MaxClasses: c.Capacity.MaxClasses,
		MaxMethods: c.Capacity.MaxMethods,
	}
}

// ShouldExclude checks if a path should be excluded from directory batches.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(base)); matched {
			return true
		}
	}

	return false
}
