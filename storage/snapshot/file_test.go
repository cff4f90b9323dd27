package snapshot_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulamba/mafunzo/storage/snapshot"
)

type record struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func newFileStore(t *testing.T) (*snapshot.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := snapshot.NewFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestFileStore_roundTrip(t *testing.T) {
	ctx := context.Background()
	store, dir := newFileStore(t)

	in := []record{{ID: "a", Count: 1}, {ID: "b", Count: 2}}
	require.NoError(t, store.Save(ctx, "things", in))

	var out []record
	require.NoError(t, store.Load(ctx, "things", &out))
	assert.Equal(t, in, out)

	// the envelope carries the version tag
	blob, err := os.ReadFile(filepath.Join(dir, "things.json"))
	require.NoError(t, err)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &env))
	assert.Equal(t, float64(snapshot.Version), env["version"])
}

func TestFileStore_missing(t *testing.T) {
	store, _ := newFileStore(t)

	var out []record
	err := store.Load(context.Background(), "things", &out)
	assert.Equal(t, snapshot.ErrNotFound, err)
	assert.False(t, snapshot.IsCorrupt(err))
}

func TestFileStore_corrupt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		blob string
	}{
		{name: "not json", blob: "{{{"},
		{name: "unsupported version", blob: `{"version": 99, "data": []}`},
		{name: "data shape mismatch", blob: `{"version": 1, "data": {"not": "a list"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newFileStore(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "things.json"), []byte(tt.blob), 0o644))

			var out []record
			err := store.Load(ctx, "things", &out)
			require.Error(t, err)
			assert.True(t, snapshot.IsCorrupt(err))
		})
	}
}

func TestFileStore_saveReplacesWholeCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	require.NoError(t, store.Save(ctx, "things", []record{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, store.Save(ctx, "things", []record{{ID: "c"}}))

	var out []record
	require.NoError(t, store.Load(ctx, "things", &out))
	assert.Equal(t, []record{{ID: "c"}}, out)
}
