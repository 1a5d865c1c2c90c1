package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/config"
)

func TestStaticPrefix(t *testing.T) {
	tests := map[string]string{
		"queries/*.cue":          "queries",
		"queries/**/*.cue":       "queries",
		"/abs/q/**/*.cue":        "/abs/q",
		"*.cue":                  ".",
		"queries/list_users.cue": "queries",
		"/list_users.cue":        "/",
		"a/{b,c}/*.cue":          "a",
	}
	for pattern, want := range tests {
		assert.Equal(t, filepath.FromSlash(want), staticPrefix(pattern), pattern)
	}
}

func TestWatchDirs(t *testing.T) {
	cfgPath := project(t, "")
	dir := filepath.Dir(cfgPath)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "queries", "admin"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "queries", ".hidden"), 0755))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	dirs := watchDirs(cfg, cfgPath)
	assert.Equal(t, []string{
		dir,
		filepath.Join(dir, "queries"),
		filepath.Join(dir, "queries", "admin"),
	}, dirs)
}

func TestWatchCommand_Regenerates(t *testing.T) {
	cfgPath := project(t, "")
	dir := filepath.Dir(cfgPath)
	out := filepath.Join(dir, "gen")

	cmd := newRootCommand(&RootOptions{Logger: zap.NewNop()})
	cmd.SetOut(io.Discard)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "-c", cfgPath, "--debounce", "20ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "list_users.gen.go"))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond, "initial generation")

	writeFile(t, dir, "queries/get_org.cue", `queries: [{select: "*", from: "org"}]`)
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "get_org.gen.go"))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond, "regeneration after a new query file")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
