package boxstore_test

import (
	"encoding/gob"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statelab/statebox"
	"github.com/statelab/statebox/boxstore"
)

type suffixOp struct{ Suffix string }

func (o suffixOp) Invoke(v string) (string, error) { return v + o.Suffix, nil }

func init() {
	gob.Register(suffixOp{})
}

func openStore(t *testing.T) (*boxstore.Store[string], *statebox.OpTable[string]) {
	t.Helper()
	table := statebox.NewOpTable[string]()
	table.Define("upper", strings.ToUpper)
	reg := statebox.DefaultRegistry(table)
	store, err := boxstore.Open(t.TempDir(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, table
}

func TestPutGetRoundTrip(t *testing.T) {
	store, table := openStore(t)

	st := statebox.Create("Hello", statebox.WithClock(&statebox.LogicalClock{}))
	branch, err := st.Modify(table.MustOp("upper"))
	require.NoError(t, err)

	rev, err := store.Put("greeting", branch)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rev)

	back, err := store.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hello", back.Value())
	assert.Equal(t, 1, back.Len())

	snap, err := back.Merge()
	require.NoError(t, err)
	assert.Equal(t, "HELLO", snap.Value())
}

func TestGetMissing(t *testing.T) {
	store, _ := openStore(t)
	_, err := store.Get("nothing")
	assert.ErrorIs(t, err, boxstore.ErrNotFound)
}

func TestGetServedFromCache(t *testing.T) {
	store, _ := openStore(t)
	_, err := store.Put("k", statebox.Create("v"))
	require.NoError(t, err)

	first, err := store.Get("k")
	require.NoError(t, err)
	second, err := store.Get("k")
	require.NoError(t, err)
	// decoded per call, never the same container instance
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Value(), second.Value())
}

func TestRevisions(t *testing.T) {
	store, _ := openStore(t)

	st := statebox.Create("one")
	rev1, err := store.Put("k", st)
	require.NoError(t, err)
	rev2, err := store.Put("k", statebox.Create("two"))
	require.NoError(t, err)

	revs, err := store.Revisions("k")
	require.NoError(t, err)
	assert.Len(t, revs, 2)
	assert.Contains(t, revs, rev1)
	assert.Contains(t, revs, rev2)

	old, err := store.Revision("k", rev1)
	require.NoError(t, err)
	assert.Equal(t, "one", old.Value())

	_, err = store.Revision("k", uuid.New())
	assert.ErrorIs(t, err, boxstore.ErrNoRevision)
}

func TestDeleteKeepsRevisions(t *testing.T) {
	store, _ := openStore(t)
	rev, err := store.Put("k", statebox.Create("v"))
	require.NoError(t, err)

	require.NoError(t, store.Delete("k"))
	_, err = store.Get("k")
	assert.ErrorIs(t, err, boxstore.ErrNotFound)

	old, err := store.Revision("k", rev)
	require.NoError(t, err)
	assert.Equal(t, "v", old.Value())
}

func TestUnserializableBoxRejected(t *testing.T) {
	store, _ := openStore(t)
	st := statebox.Create("Hello")
	branch, err := st.Modify(statebox.OpFunc(strings.ToUpper))
	require.NoError(t, err)

	_, err = store.Put("k", branch)
	assert.ErrorIs(t, err, statebox.ErrNoCodecRegistered)
}
