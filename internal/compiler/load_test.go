package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocumentFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.cue", schemaDoc+`
queries: [{select: "name", from: "user"}]
`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Definitions)
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, "SELECT name FROM user", doc.Statements[0].String())
}

func TestLoadDocumentDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.cue", "package app\n"+schemaDoc)
	writeFile(t, dir, "queries.cue", `package app

queries: [{select: "*", from: "org"}]
`)

	doc, err := LoadDocument(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Definitions)
	assert.Len(t, doc.Statements, 1)

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLoadFileSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.cue", "table: {\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "bad.cue")
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
