package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/testutil"
)

// createTestStore opens a store in a temp dir with a deterministic clock
// and sequential run ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"),
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDGenerator(testutil.NewSequentialIDs().Next),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
