package store

import (
	"container/list"
	"sync"

	"github.com/SarthakMakhija/kademlia/metrics"
)

// DefaultMemoryStoreCapacity bounds MemoryStore to a modest number of
// entries; callers needing more can construct with an explicit capacity.
const DefaultMemoryStoreCapacity = 10000

type entry struct {
	key   Key
	value []byte
}

// MemoryStore is a bounded in-memory key/value store with LRU eviction,
// keyed by the raw key bytes. It is a reference/test double, not a
// production persistence layer.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List

	hits      *metrics.Counter
	misses    *metrics.Counter
	evictions *metrics.Counter
	size      *metrics.Gauge
}

// NewMemoryStore builds an empty store bounded to capacity entries. A
// non-positive capacity defaults to DefaultMemoryStoreCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryStoreCapacity
	}
	return &MemoryStore{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		order:     list.New(),
		hits:      metrics.NewCounter("kademlia_store_hits_total"),
		misses:    metrics.NewCounter("kademlia_store_misses_total"),
		evictions: metrics.NewCounter("kademlia_store_evictions_total"),
		size:      metrics.NewGauge("kademlia_store_size"),
	}
}

// PutOrUpdate inserts or overwrites key's value, moving it to the front of
// the LRU order. If inserting a new key would exceed capacity, the least
// recently used entry is evicted first.
func (s *MemoryStore) PutOrUpdate(key Key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key.Bytes)
	if elem, ok := s.items[k]; ok {
		elem.Value.(*entry).value = value
		s.order.MoveToFront(elem)
		return
	}

	if s.order.Len() >= s.capacity {
		s.evictOldestLocked()
	}

	elem := s.order.PushFront(&entry{key: key, value: value})
	s.items[k] = elem
	s.size.Set(int64(s.order.Len()))
}

// Get returns key's value and true, moving it to the front of the LRU
// order, or (nil, false) if absent.
func (s *MemoryStore) Get(key Key) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[string(key.Bytes)]
	if !ok {
		s.misses.Inc()
		return nil, false
	}
	s.order.MoveToFront(elem)
	s.hits.Inc()
	return elem.Value.(*entry).value, true
}

// Delete removes key, reporting whether it was present.
func (s *MemoryStore) Delete(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key.Bytes)
	elem, ok := s.items[k]
	if !ok {
		return false
	}
	s.order.Remove(elem)
	delete(s.items, k)
	s.size.Set(int64(s.order.Len()))
	return true
}

// Len returns the number of entries currently stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) evictOldestLocked() {
	oldest := s.order.Back()
	if oldest == nil {
		return
	}
	s.order.Remove(oldest)
	delete(s.items, string(oldest.Value.(*entry).key.Bytes))
	s.evictions.Inc()
}
