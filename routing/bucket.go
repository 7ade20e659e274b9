package routing

import (
	"sync"

	"github.com/SarthakMakhija/kademlia/id"
)

// bucket is a k-bucket: a capacity-bounded, insertion-ordered list of nodes
// guarded by its own reader-writer lock so that operations on disjoint
// buckets never contend with one another.
type bucket struct {
	mu       sync.RWMutex
	nodes    []id.Node
	capacity int
}

func newBucket(capacity int) *bucket {
	return &bucket{capacity: capacity}
}

// add appends node if it is not already present and the bucket has room.
// Returns true if the node was added.
func (b *bucket) add(node id.Node) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.nodes {
		if existing.Equal(node) {
			return false
		}
	}
	if len(b.nodes) >= b.capacity {
		return false
	}
	b.nodes = append(b.nodes, node)
	return true
}

// contains reports whether node is present in the bucket.
func (b *bucket) contains(node id.Node) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, existing := range b.nodes {
		if existing.Equal(node) {
			return true
		}
	}
	return false
}

// first returns the oldest node in the bucket, if any.
func (b *bucket) first() (id.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.nodes) == 0 {
		return id.Node{}, false
	}
	return b.nodes[0], true
}

// removeAndAdd removes toRemove and appends toAdd under a single write
// acquisition, provided toRemove is present and toAdd is absent.
func (b *bucket) removeAndAdd(toRemove, toAdd id.Node) {
	b.mu.Lock()
	defer b.mu.Unlock()

	removeIndex := -1
	for i, existing := range b.nodes {
		if existing.Equal(toRemove) {
			removeIndex = i
		}
		if existing.Equal(toAdd) {
			return
		}
	}
	if removeIndex < 0 {
		return
	}
	b.nodes = append(b.nodes[:removeIndex], b.nodes[removeIndex+1:]...)
	b.nodes = append(b.nodes, toAdd)
}

// snapshot returns a copy of the bucket's current nodes.
func (b *bucket) snapshot() []id.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]id.Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// len returns the number of nodes currently in the bucket.
func (b *bucket) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.nodes)
}
