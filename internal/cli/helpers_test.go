package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSchema = `table: user: {
	schemafull: true
	fields: {
		name: "string"
		age:  int
		org:  "record<org>"
	}
}
table: org: {
	schemafull: true
	fields: name: string
}
`

const listUsersQuery = `queries: [
	{select: "*", from: "user", where: "name = $name", limit: "$limit"},
]
`

const listUsersTypes = "[0] array<object{age: int, id: record<user>, name: string, org: record<org>}>\n$limit: int\n$name: string\n"

// writeFile writes content to dir/name, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with a no-op logger and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{Logger: zap.NewNop()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// project writes a schema, one query document and a project file into a
// temp dir and returns the project file's path.
func project(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "schema.cue", testSchema)
	writeFile(t, dir, "queries/list_users.cue", listUsersQuery)
	return writeFile(t, dir, "surreal-codegen.yaml", `schema: schema.cue
queries:
  - "queries/**/*.cue"
output: gen
package: db
`+extra)
}
