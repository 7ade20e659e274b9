package action

import (
	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/routing"
)

// FindNode answers FIND_NODE requests with the closest known neighbors to
// the requested node id.
type FindNode struct {
	routing    *routing.Table
	network    *network.Network
	self       id.Node
	alphaReply int
	logger     *log.Logger
}

// NewFindNode builds a FindNode action bounded to alphaReply neighbors per
// reply (DefaultAlphaReply if non-positive).
func NewFindNode(table *routing.Table, n *network.Network, self id.Node, alphaReply int) *FindNode {
	if alphaReply <= 0 {
		alphaReply = DefaultAlphaReply
	}
	return &FindNode{routing: table, network: n, self: self, alphaReply: alphaReply, logger: log.Default().Module("action")}
}

// HandleFindNode replies with the closest known neighbors to msg's target
// node id. A request without a message id cannot be correlated by the
// sender and is dropped with a warning.
func (a *FindNode) HandleFindNode(msg *message.FindNode) {
	if msg.MessageId == nil {
		a.logger.Warn("dropping find_node without a message id", "target", msg.NodeId.String())
		return
	}
	messageId := *msg.MessageId

	closest := a.routing.ClosestNeighbors(msg.NodeId, a.alphaReply)
	reply := &message.FindNodeReply{MessageId: messageId, Neighbors: toSources(closest.Nodes())}
	if err := a.network.Send(reply, msg.Source.Endpoint); err != nil {
		a.logger.Error("failed to send find_node reply", "to", msg.Source.Endpoint.String(), "error", err)
	}
}
