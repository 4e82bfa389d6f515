package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Golto/Lua-interpreter/vm"
)

func snapOf(t *testing.T, n int64) *Snapshot {
	t.Helper()
	s, err := Capture(map[string]vm.Value{"n": vm.IntValue(n)})
	require.NoError(t, err)
	return s
}

func TestMemoryStoreDeduplicates(t *testing.T) {
	store := NewMemoryStore()
	s1 := snapOf(t, 1)
	s2 := snapOf(t, 1)

	d1 := store.Put(s1)
	d2 := store.Put(s2)
	require.Equal(t, d1, d2, "identical states share one entry")

	got, ok := store.Get(d1)
	require.True(t, ok)
	require.Equal(t, s1.Data, got.Data)
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	_, ok := store.Get(Digest(12345))
	require.False(t, ok)
	require.False(t, store.Has(Digest(12345)))
}

func TestLRUStoreCachesAndEvicts(t *testing.T) {
	store := NewMemoryStore()
	lru := NewLRUStore(store, 2)

	d1 := lru.Put(snapOf(t, 1))
	d2 := lru.Put(snapOf(t, 2))
	d3 := lru.Put(snapOf(t, 3))

	require.Equal(t, 2, lru.Stats().Size, "third insert evicts the oldest")

	// Evicted entries are still in the underlying store.
	for _, d := range []Digest{d1, d2, d3} {
		got, ok := lru.Get(d)
		require.True(t, ok)
		require.Equal(t, d, got.Digest)
	}
}

func TestLRUStoreDefaultSize(t *testing.T) {
	lru := NewLRUStore(NewMemoryStore(), 0)
	require.Equal(t, 1000, lru.Stats().MaxSize)
}
