package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"string", String},
		{"  int ", Int},
		{"boolean", Bool},
		{"option<string>", Option{Inner: String}},
		{"option<option<string>>", Option{Inner: String}},
		{"array<int>", ArrayOf(Int)},
		{"array<int, 10>", ArrayOf(Int)},
		{"set<string>", ArrayOf(String)},
		{"record<user>", Rec("user")},
		{"record<user | admin>", Rec("user", "admin")},
		{"string | int", Either{Alts: []Kind{String, Int}}},
		{"either<string, null>", Either{Alts: []Kind{String, Null}}},
		{"object", Object{}},
		{"object{}", Object{}},
		{
			`array<object{id: record<org>, "->x": option<float>}>`,
			ArrayOf(Object{"id": Rec("org"), "->x": Option{Inner: Float}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %s", got)
		})
	}
}

func TestParseInvertsString(t *testing.T) {
	k := ArrayOf(Object{
		"id":    Rec("works_at"),
		"in":    Rec("user"),
		"out":   Rec("company"),
		"extra": Union(Object{"n": Option{Inner: Decimal}}, ArrayOf(Duration)),
		"*":     ArrayOf(Uuid),
	})

	got, err := Parse(k.String())
	require.NoError(t, err)
	assert.True(t, Equal(k, got), "got %s", got)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"", "expected type name"},
		{"strin", "unknown type"},
		{"record", "at least one table"},
		{"array<int", `expected '>'`},
		{"object{a string}", `expected ':'`},
		{"int int", "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
