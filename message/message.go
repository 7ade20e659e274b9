// Package message defines the tagged union of wire messages exchanged
// between Kademlia nodes, and the length-prefixed codec that serializes
// them. See codec.go for the wire format.
package message

import "github.com/SarthakMakhija/kademlia/id"

// MessageId identifies an outbound request awaiting a reply.
type MessageId = int64

// Kind tags a Message variant. The ordering here is part of the wire
// format and must not change once deployed.
type Kind byte

const (
	KindStore Kind = iota + 1
	KindAddNode
	KindFindValue
	KindFindValueReply
	KindFindNode
	KindFindNodeReply
	KindPing
	KindPingReply
	KindShutDown
)

// String renders the kind for logging.
func (k Kind) String() string {
	switch k {
	case KindStore:
		return "Store"
	case KindAddNode:
		return "AddNode"
	case KindFindValue:
		return "FindValue"
	case KindFindValueReply:
		return "FindValueReply"
	case KindFindNode:
		return "FindNode"
	case KindFindNodeReply:
		return "FindNodeReply"
	case KindPing:
		return "Ping"
	case KindPingReply:
		return "PingReply"
	case KindShutDown:
		return "ShutDown"
	default:
		return "Unknown"
	}
}

// Message is implemented by every wire variant.
type Message interface {
	Kind() Kind
}

// Source is the wire form of a Node: an endpoint paired with a node id.
type Source struct {
	Endpoint id.Endpoint
	NodeId   id.Id
}

// SourceFromNode builds a Source from a Node.
func SourceFromNode(n id.Node) Source {
	return Source{Endpoint: n.Endpoint, NodeId: n.Id}
}

// ToNode converts a Source back into a Node.
func (s Source) ToNode() id.Node {
	return id.NewNodeWithId(s.NodeId, s.Endpoint)
}

// Store requests that the receiver's Store upsert key -> value.
type Store struct {
	Key    []byte
	KeyId  id.KeyId
	Value  []byte
	Source Source
}

// Kind implements Message.
func (*Store) Kind() Kind { return KindStore }

// AddNode asks the receiver to record Source as a live, contactable peer.
type AddNode struct {
	Source Source
}

// Kind implements Message.
func (*AddNode) Kind() Kind { return KindAddNode }

// FindValue asks the receiver to return Key's value, or the closest known
// neighbors to KeyId if it does not have the value.
type FindValue struct {
	Source    Source
	MessageId *MessageId
	Key       []byte
	KeyId     id.KeyId
}

// Kind implements Message.
func (*FindValue) Kind() Kind { return KindFindValue }

// FindValueReply carries exactly one of Value or Neighbors.
type FindValueReply struct {
	MessageId MessageId
	Value     []byte
	Neighbors []Source
}

// NewFindValueReplyWithValue builds a reply carrying the found value.
func NewFindValueReplyWithValue(messageId MessageId, value []byte) *FindValueReply {
	return &FindValueReply{MessageId: messageId, Value: value}
}

// NewFindValueReplyWithNeighbors builds a reply carrying closest neighbors.
func NewFindValueReplyWithNeighbors(messageId MessageId, neighbors []Source) *FindValueReply {
	return &FindValueReply{MessageId: messageId, Neighbors: neighbors}
}

// HasValue reports whether the reply carries a found value.
func (r *FindValueReply) HasValue() bool { return r.Value != nil }

// HasNeighbors reports whether the reply carries a neighbor list.
func (r *FindValueReply) HasNeighbors() bool { return r.Neighbors != nil }

// Kind implements Message.
func (*FindValueReply) Kind() Kind { return KindFindValueReply }

// FindNode asks the receiver to return the closest known neighbors to NodeId.
type FindNode struct {
	Source    Source
	MessageId *MessageId
	NodeId    id.Id
}

// Kind implements Message.
func (*FindNode) Kind() Kind { return KindFindNode }

// FindNodeReply carries the closest known neighbors to a requested node id.
type FindNodeReply struct {
	MessageId MessageId
	Neighbors []Source
}

// Kind implements Message.
func (*FindNodeReply) Kind() Kind { return KindFindNodeReply }

// Ping is a liveness probe. Senders must always assign MessageId.
type Ping struct {
	MessageId *MessageId
	From      Source
}

// Kind implements Message.
func (*Ping) Kind() Kind { return KindPing }

// PingReply answers a Ping, identifying the replier as To.
type PingReply struct {
	MessageId MessageId
	To        Source
}

// Kind implements Message.
func (*PingReply) Kind() Kind { return KindPingReply }

// ShutDown terminates an executor's worker.
type ShutDown struct{}

// Kind implements Message.
func (*ShutDown) Kind() Kind { return KindShutDown }

// ShutdownMessage constructs a ShutDown message.
func ShutdownMessage() Message { return &ShutDown{} }

// SetMessageId sets id on FindValue, FindNode, or Ping. It is a no-op on
// every other variant.
func SetMessageId(m Message, messageId MessageId) {
	switch v := m.(type) {
	case *FindValue:
		v.MessageId = &messageId
	case *FindNode:
		v.MessageId = &messageId
	case *Ping:
		v.MessageId = &messageId
	}
}

// HasSource reports whether m carries a Source, and returns it. Every
// variant except ShutDown and the three *Reply variants carries a source.
func HasSource(m Message) (Source, bool) {
	switch v := m.(type) {
	case *Store:
		return v.Source, true
	case *AddNode:
		return v.Source, true
	case *FindValue:
		return v.Source, true
	case *FindNode:
		return v.Source, true
	case *Ping:
		return v.From, true
	default:
		return Source{}, false
	}
}

// IsShutdownType reports whether m is a ShutDown message.
func IsShutdownType(m Message) bool { _, ok := m.(*ShutDown); return ok }

// IsStoreType reports whether m is a Store message.
func IsStoreType(m Message) bool { _, ok := m.(*Store); return ok }

// IsPingType reports whether m is a Ping message.
func IsPingType(m Message) bool { _, ok := m.(*Ping); return ok }

// IsPingReplyType reports whether m is a PingReply message.
func IsPingReplyType(m Message) bool { _, ok := m.(*PingReply); return ok }

// IsFindValueType reports whether m is a FindValue message.
func IsFindValueType(m Message) bool { _, ok := m.(*FindValue); return ok }

// IsFindValueReplyType reports whether m is a FindValueReply message.
func IsFindValueReplyType(m Message) bool { _, ok := m.(*FindValueReply); return ok }

// IsFindNodeType reports whether m is a FindNode message.
func IsFindNodeType(m Message) bool { _, ok := m.(*FindNode); return ok }

// IsFindNodeReplyType reports whether m is a FindNodeReply message.
func IsFindNodeReplyType(m Message) bool { _, ok := m.(*FindNodeReply); return ok }

// IsAddNodeType reports whether m is an AddNode message.
func IsAddNodeType(m Message) bool { _, ok := m.(*AddNode); return ok }

// IsReplyType reports whether m is one of the three reply variants, which
// the executor correlates against the waiting list instead of dispatching
// to an action.
func IsReplyType(m Message) bool {
	switch m.(type) {
	case *PingReply, *FindValueReply, *FindNodeReply:
		return true
	default:
		return false
	}
}
