package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/testutil"
)

func sampleRun(hash string) Run {
	return Run{
		InputHash: hash,
		Source:    "queries/users.cue",
		ReturnTypes: []kind.Kind{
			kind.ArrayOf(kind.Object{"id": kind.Rec("user"), "name": kind.String}),
			kind.Null,
		},
		Variables: map[string]kind.Kind{
			"id":   kind.Rec("user"),
			"name": kind.Either{Alts: []kind.Kind{kind.String, kind.Int}},
		},
	}
}

func TestWriteRun_AssignsIdentity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.WriteRun(ctx, sampleRun("hash-1"))
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, testutil.Epoch, run.CreatedAt)
	assert.Equal(t, "queries/users.cue", run.Source)
}

func TestWriteRun_RoundTripsKinds(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	want := sampleRun("hash-1")

	_, err := s.WriteRun(ctx, want)
	require.NoError(t, err)

	got, ok, err := s.LookupRun(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, got.ReturnTypes, len(want.ReturnTypes))
	for i := range want.ReturnTypes {
		assert.True(t, kind.Equal(want.ReturnTypes[i], got.ReturnTypes[i]), "return type %d: %s", i, got.ReturnTypes[i])
	}
	require.Len(t, got.Variables, 2)
	for name, k := range want.Variables {
		assert.True(t, kind.Equal(k, got.Variables[name]), "variable %s: %s", name, got.Variables[name])
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.WriteRun(ctx, sampleRun("hash-1"))
	require.NoError(t, err)
	second, err := s.WriteRun(ctx, sampleRun("hash-1"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Seq, second.Seq)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RequiresHash(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteRun(context.Background(), Run{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input hash is required")
}

func TestWriteRun_RejectsInvalidKind(t *testing.T) {
	s := createTestStore(t)
	run := sampleRun("hash-1")
	run.ReturnTypes = []kind.Kind{kind.Record{}}

	_, err := s.WriteRun(context.Background(), run)
	assert.Error(t, err)
}

func TestLookupRun_Missing(t *testing.T) {
	s := createTestStore(t)
	_, ok, err := s.LookupRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, h := range []string{"a", "b", "c"} {
		_, err := s.WriteRun(ctx, sampleRun(h))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{runs[0].Seq, runs[1].Seq, runs[2].Seq})
	assert.Equal(t, "c", runs[0].InputHash)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListRuns_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestListRunsFor_FiltersBySource(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, src := range []string{"a.cue", "b.cue", "a.cue"} {
		run := sampleRun(fmt.Sprintf("hash-%d", i))
		run.Source = src
		_, err := s.WriteRun(ctx, run)
		require.NoError(t, err)
	}

	runs, err := s.ListRunsFor(ctx, "a.cue", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(3), runs[0].Seq)
	assert.Equal(t, int64(1), runs[1].Seq)

	runs, err = s.ListRunsFor(ctx, "a.cue", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	runs, err = s.ListRunsFor(ctx, "missing.cue", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
