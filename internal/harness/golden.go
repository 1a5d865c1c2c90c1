package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// Snapshot is the golden form of a scenario result. Kinds are stored as text
// so diffs read like type annotations.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	ReturnTypes  []string          `json:"return_types,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: name}
	if result.Err != nil {
		s.ErrorCode = string(schema.CodeOf(result.Err))
		if s.ErrorCode == "" {
			s.ErrorCode = "UNKNOWN"
		}
		return s
	}
	for _, k := range result.ReturnTypes {
		s.ReturnTypes = append(s.ReturnTypes, k.String())
	}
	if len(result.Variables) > 0 {
		s.Variables = make(map[string]string, len(result.Variables))
		for name, k := range result.Variables {
			s.Variables[name] = k.String()
		}
	}
	return s
}

// Marshal encodes the snapshot as indented JSON with sorted keys and without
// HTML escaping, so `record<user>` stays readable.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
