package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Scenario is one inference check: a document and the types it must infer.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Files lists CUE documents to compile. Schema and queries may be split
	// across files; their sections are concatenated in order.
	Files []string `yaml:"files,omitempty"`

	// CUE is an inline document, used when Files is empty.
	CUE string `yaml:"cue,omitempty"`

	// Globals maps parameter names to type expressions.
	Globals map[string]string `yaml:"globals,omitempty"`

	// Assertions validate the inference result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of an inference result.
type Assertion struct {
	// Type is one of return_type, variable, variable_count, error.
	Type string `yaml:"type"`

	// Index is the statement index (return_type).
	Index int `yaml:"index,omitempty"`

	// Name is the parameter name without `$` (variable).
	Name string `yaml:"name,omitempty"`

	// Kind is the expected type expression (return_type, variable).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of parameters (variable_count).
	Count int `yaml:"count,omitempty"`

	// Code is the expected error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertReturnType    = "return_type"
	AssertVariable      = "variable"
	AssertVariableCount = "variable_count"
	AssertError         = "error"
)

// LoadScenario reads and parses a scenario YAML file. Relative file paths
// are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so typos like "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, f := range scenario.Files {
		if !filepath.IsAbs(f) {
			scenario.Files[i] = filepath.Join(base, f)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml scenario in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ParsedGlobals returns Globals with their type expressions parsed.
func (s *Scenario) ParsedGlobals() (map[string]kind.Kind, error) {
	if len(s.Globals) == 0 {
		return nil, nil
	}
	out := make(map[string]kind.Kind, len(s.Globals))
	for name, expr := range s.Globals {
		k, err := kind.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("globals.%s: %w", name, err)
		}
		out[name] = k
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case len(s.Files) == 0 && s.CUE == "":
		return fmt.Errorf("one of files or cue is required")
	case len(s.Files) > 0 && s.CUE != "":
		return fmt.Errorf("files and cue are mutually exclusive")
	}
	for _, f := range s.Files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", f)
		}
	}

	if _, err := s.ParsedGlobals(); err != nil {
		return err
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertReturnType:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for return_type", index)
		}
		if err := checkKind(index, a); err != nil {
			return err
		}
	case AssertVariable:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for variable", index)
		}
		if err := checkKind(index, a); err != nil {
			return err
		}
	case AssertVariableCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for variable_count", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func checkKind(index int, a *Assertion) error {
	if a.Kind == "" {
		return fmt.Errorf("assertions[%d]: kind is required for %s", index, a.Type)
	}
	if _, err := kind.Parse(a.Kind); err != nil {
		return fmt.Errorf("assertions[%d]: %w", index, err)
	}
	return nil
}
