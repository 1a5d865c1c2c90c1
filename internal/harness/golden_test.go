package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

func TestRunWithGolden_SelectUsers(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/select_users.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_SelectUsers -update
	require.NoError(t, RunWithGolden(t, s))
}

func TestSnapshot_Marshal(t *testing.T) {
	result := NewResult()
	result.ReturnTypes = []kind.Kind{kind.ArrayOf(kind.Object{"id": kind.Rec("user")}), kind.Null}
	result.Variables = map[string]kind.Kind{"b": kind.Int, "a": kind.Optional(kind.String)}

	data, err := NewSnapshot("snap", result).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario_name": "snap",
  "return_types": [
    "array<object{id: record<user>}>",
    "null"
  ],
  "variables": {
    "a": "option<string>",
    "b": "int"
  }
}
`, string(data))
}

func TestSnapshot_Error(t *testing.T) {
	result := NewResult()
	result.Err = schema.UnknownTable("ghost")

	data, err := NewSnapshot("ghost", result).Marshal()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"scenario_name\": \"ghost\",\n  \"error_code\": \"UNKNOWN_TABLE\"\n}\n", string(data))
}

func TestSnapshot_EmptyVariablesOmitted(t *testing.T) {
	result := NewResult()
	result.ReturnTypes = []kind.Kind{kind.Int}

	snap := NewSnapshot("s", result)
	assert.Nil(t, snap.Variables)
	assert.Equal(t, []string{"int"}, snap.ReturnTypes)
}
