package snapshot

import (
	"container/list"
	"sync"
)

// Store is a content-addressed snapshot store: the digest is the key,
// identical states collapse into one entry.
type Store interface {
	Put(s *Snapshot) Digest
	Get(d Digest) (*Snapshot, bool)
	Has(d Digest) bool
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[Digest][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Digest][]byte)}
}

func (m *MemoryStore) Put(s *Snapshot) Digest {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.Digest] = s.Data
	return s.Digest
}

func (m *MemoryStore) Get(d Digest) (*Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[d]
	if !ok {
		return nil, false
	}
	return &Snapshot{Digest: d, Data: data}, true
}

func (m *MemoryStore) Has(d Digest) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[d]
	return ok
}

// LRUStore wraps a Store with an in-memory cache of recently fetched
// snapshots, evicting the least recently used entry past maxSize.
type LRUStore struct {
	underlying Store
	cache      map[Digest]*list.Element
	evictList  *list.List
	maxSize    int
}

type cacheEntry struct {
	digest Digest
	snap   *Snapshot
}

// NewLRUStore builds the wrapper. maxSize of zero or below picks a
// default of 1000 entries.
func NewLRUStore(underlying Store, maxSize int) *LRUStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LRUStore{
		underlying: underlying,
		cache:      make(map[Digest]*list.Element),
		evictList:  list.New(),
		maxSize:    maxSize,
	}
}

func (l *LRUStore) Put(s *Snapshot) Digest {
	d := l.underlying.Put(s)
	l.addToCache(d, s)
	return d
}

func (l *LRUStore) Get(d Digest) (*Snapshot, bool) {
	if elem, ok := l.cache[d]; ok {
		l.evictList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).snap, true
	}
	s, ok := l.underlying.Get(d)
	if !ok {
		return nil, false
	}
	l.addToCache(d, s)
	return s, true
}

func (l *LRUStore) Has(d Digest) bool {
	if _, ok := l.cache[d]; ok {
		return true
	}
	return l.underlying.Has(d)
}

func (l *LRUStore) addToCache(d Digest, s *Snapshot) {
	if elem, ok := l.cache[d]; ok {
		l.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry).snap = s
		return
	}
	elem := l.evictList.PushFront(&cacheEntry{digest: d, snap: s})
	l.cache[d] = elem
	if l.evictList.Len() > l.maxSize {
		l.evictOldest()
	}
}

func (l *LRUStore) evictOldest() {
	elem := l.evictList.Back()
	if elem == nil {
		return
	}
	l.evictList.Remove(elem)
	delete(l.cache, elem.Value.(*cacheEntry).digest)
}

// CacheStats reports cache occupancy for monitoring.
type CacheStats struct {
	Size    int
	MaxSize int
}

func (l *LRUStore) Stats() CacheStats {
	return CacheStats{Size: len(l.cache), MaxSize: l.maxSize}
}
