package action

import (
	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/routing"
	"github.com/SarthakMakhija/kademlia/store"
)

// FindValue answers FIND_VALUE requests: the value if this node holds it,
// otherwise the closest known neighbors to the requested key.
type FindValue struct {
	store      store.Store
	routing    *routing.Table
	network    *network.Network
	self       id.Node
	alphaReply int
	logger     *log.Logger
}

// NewFindValue builds a FindValue action bounded to alphaReply neighbors
// per reply (DefaultAlphaReply if non-positive).
func NewFindValue(s store.Store, table *routing.Table, n *network.Network, self id.Node, alphaReply int) *FindValue {
	if alphaReply <= 0 {
		alphaReply = DefaultAlphaReply
	}
	return &FindValue{store: s, routing: table, network: n, self: self, alphaReply: alphaReply, logger: log.Default().Module("action")}
}

// HandleFindValue replies with the value if present, or the closest known
// neighbors to msg's key id otherwise. A request without a message id
// cannot be correlated by the sender and is dropped with a warning.
func (a *FindValue) HandleFindValue(msg *message.FindValue) {
	if msg.MessageId == nil {
		a.logger.Warn("dropping find_value without a message id", "key", msg.KeyId.String())
		return
	}
	messageId := *msg.MessageId

	if value, ok := a.store.Get(store.Key{Id: msg.KeyId, Bytes: msg.Key}); ok {
		reply := message.NewFindValueReplyWithValue(messageId, value)
		a.send(reply, msg.Source)
		return
	}

	closest := a.routing.ClosestNeighbors(msg.KeyId, a.alphaReply)
	neighbors := toSources(closest.Nodes())
	reply := message.NewFindValueReplyWithNeighbors(messageId, neighbors)
	a.send(reply, msg.Source)
}

// send delivers reply from a detached goroutine so the executor's worker is
// never blocked on a peer's socket.
func (a *FindValue) send(reply message.Message, source message.Source) {
	go func() {
		if err := a.network.Send(reply, source.Endpoint); err != nil {
			a.logger.Error("failed to send find_value reply", "to", source.Endpoint.String(), "error", err)
		}
	}()
}

func toSources(nodes []id.Node) []message.Source {
	sources := make([]message.Source, len(nodes))
	for i, n := range nodes {
		sources[i] = message.SourceFromNode(n)
	}
	return sources
}
