package action

import (
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/store"
)

// Store persists STORE requests into the local key/value store. It never
// replies; the requester learns nothing beyond the fact that the
// connection was accepted. The source node reaches the routing table via
// the connection handler's separate AddNode submission, not from here.
type Store struct {
	store store.Store
}

// NewStore builds a Store action writing into the given store.
func NewStore(s store.Store) *Store {
	return &Store{store: s}
}

// HandleStore writes msg's value under its key.
func (a *Store) HandleStore(msg *message.Store) {
	a.store.PutOrUpdate(store.Key{Id: msg.KeyId, Bytes: msg.Key}, msg.Value)
}
