package buffer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, opts Options) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreOrdersByPriorityThenTime(t *testing.T) {
	store := openStore(t, Options{})
	base := time.Now()

	require.NoError(t, store.Enqueue(Item{ID: "late", Entity: EntityTask, Priority: 4, Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.Enqueue(Item{ID: "early", Entity: EntityTask, Priority: 4, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{ID: "project", Entity: EntityProject, Priority: 3, Timestamp: base.Add(time.Minute)}))

	items, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"project", "early", "late"}, []string{items[0].ID, items[1].ID, items[2].ID})

	limited, err := store.Peek(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreRemoveAndRequeue(t *testing.T) {
	store := openStore(t, Options{})
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.Enqueue(Item{ID: "a", Priority: 3, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{ID: "b", Priority: 3, Timestamp: base.Add(time.Second)}))

	items, err := store.Peek(10)
	require.NoError(t, err)

	items[0].Retries++
	require.NoError(t, store.Requeue(items[0]))

	items, err = store.Peek(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, 1, items[1].Retries)

	require.NoError(t, store.Remove(Item{ID: "b"}))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStoreMaxSizeAndCleanup(t *testing.T) {
	store := openStore(t, Options{Bucket: "writes", MaxSize: 2})
	old := time.Now().Add(-48 * time.Hour)

	require.NoError(t, store.Enqueue(Item{ID: "old", Timestamp: old}))
	require.NoError(t, store.Enqueue(Item{ID: "new"}))
	assert.ErrorIs(t, store.Enqueue(Item{ID: "overflow"}), ErrFull)

	removed, err := store.Cleanup(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items, err := store.Peek(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)
}
