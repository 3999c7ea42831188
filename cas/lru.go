package cas

import (
	"container/list"
	"sync"
)

// LRUCache is a bounded CAS. Once full, each Put evicts the least
// recently used entry.
type LRUCache struct {
	mu        sync.Mutex
	cache     map[Hash]*list.Element
	evictList *list.List
	maxSize   int
	evictions int
}

type cacheEntry struct {
	hash  Hash
	value []byte
}

// NewLRUCache creates a bounded store. maxSize <= 0 selects the default.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LRUCache{
		cache:     make(map[Hash]*list.Element),
		evictList: list.New(),
		maxSize:   maxSize,
	}
}

func (l *LRUCache) Put(item Hashable) (Hash, error) {
	h, data, err := Encode(item)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addToCache(h, data)
	return h, nil
}

func (l *LRUCache) Has(hash Hash) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[hash]
	return ok
}

// Get returns the stored bytes and marks the entry most recently used.
func (l *LRUCache) Get(hash Hash) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	elem, ok := l.cache[hash]
	if !ok {
		return nil, false
	}
	l.evictList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (l *LRUCache) addToCache(hash Hash, value []byte) {
	if elem, ok := l.cache[hash]; ok {
		l.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{
		hash:  hash,
		value: value,
	}
	elem := l.evictList.PushFront(entry)
	l.cache[hash] = elem

	if l.evictList.Len() > l.maxSize {
		l.evictOldest()
	}
}

func (l *LRUCache) evictOldest() {
	elem := l.evictList.Back()
	if elem != nil {
		l.evictList.Remove(elem)
		entry := elem.Value.(*cacheEntry)
		delete(l.cache, entry.hash)
		l.evictions++
	}
}

// CacheStats describes a store's occupancy. MaxSize is 0 for an
// unbounded store.
type CacheStats struct {
	Size      int
	MaxSize   int
	Evictions int
}

func (l *LRUCache) Stats() CacheStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CacheStats{
		Size:      len(l.cache),
		MaxSize:   l.maxSize,
		Evictions: l.evictions,
	}
}
