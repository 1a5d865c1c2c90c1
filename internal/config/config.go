// Package config loads surreal-codegen.yaml, the project file that names the
// schema document, the query documents and the generation settings.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"gopkg.in/yaml.v3"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// DefaultFile is the config file name looked up when --config is not given.
const DefaultFile = "surreal-codegen.yaml"

// Defaults applied to fields the file leaves empty.
const (
	DefaultOutput  = "gen"
	DefaultPackage = "queries"
)

// Config is the project file.
type Config struct {
	// Schema is the CUE file or directory holding `table` definitions.
	Schema string `yaml:"schema"`

	// Queries are glob patterns (with ** support) for query documents.
	Queries []string `yaml:"queries"`

	// Globals are parameters bound for every query, as type expressions,
	// e.g. auth: record<user>.
	Globals map[string]string `yaml:"globals,omitempty"`

	// Output is the directory generated Go files are written to.
	Output string `yaml:"output,omitempty"`

	// Package is the Go package name of generated files.
	Package string `yaml:"package,omitempty"`

	// Cache is the SQLite database caching inference runs. Empty disables it.
	Cache string `yaml:"cache,omitempty"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Load reads and validates a config file. Relative paths in the file are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.dir = abs
	cfg.applyDefaults()
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
}

func (c *Config) resolve() {
	c.Schema = c.abs(c.Schema)
	c.Output = c.abs(c.Output)
	if c.Cache != "" {
		c.Cache = c.abs(c.Cache)
	}
	for i, q := range c.Queries {
		c.Queries[i] = c.abs(q)
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate checks required fields and that globals parse.
func (c *Config) Validate() error {
	if c.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}
	if !isIdentifier(c.Package) {
		return fmt.Errorf("package %q is not a valid Go package name", c.Package)
	}
	if _, err := c.ParsedGlobals(); err != nil {
		return err
	}
	return nil
}

// ParsedGlobals parses the globals' type expressions.
func (c *Config) ParsedGlobals() (map[string]kind.Kind, error) {
	if len(c.Globals) == 0 {
		return nil, nil
	}
	out := make(map[string]kind.Kind, len(c.Globals))
	for name, expr := range c.Globals {
		k, err := kind.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("globals.%s: %w", name, err)
		}
		out[name] = k
	}
	return out, nil
}

// QueryFiles expands the query patterns into a sorted, deduplicated list
// of files.
func (c *Config) QueryFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range c.Queries {
		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Watches reports whether a change to path should trigger regeneration:
// the schema itself, anything under a schema directory, or a file matching
// a query pattern.
func (c *Config) Watches(path string) bool {
	path = filepath.Clean(path)
	schema := filepath.Clean(c.Schema)
	if path == schema {
		return true
	}
	if rel, err := filepath.Rel(schema, path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !startsWithParent(rel) {
		return true
	}
	for _, pattern := range c.Queries {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
