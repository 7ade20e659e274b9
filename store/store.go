// Package store defines the key/value capability that handlers read and
// write, plus a bounded in-memory reference implementation.
//
// Grounded on the reference codebase's portal ContentDB: container/list LRU
// ordering and atomic counters for hits/misses/evictions, narrowed from
// content-radius-aware storage to a plain bounded key/value map since
// content radius has no Kademlia analogue in this spec.
package store

import "github.com/SarthakMakhija/kademlia/id"

// Key identifies a stored value by its raw bytes and precomputed id.
type Key struct {
	Id    id.Id
	Bytes []byte
}

// Store is the capability handlers use to persist and retrieve values.
type Store interface {
	PutOrUpdate(key Key, value []byte)
	Get(key Key) ([]byte, bool)
	Delete(key Key) bool
	Len() int
}
