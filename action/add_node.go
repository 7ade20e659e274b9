package action

import (
	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/routing"
	"github.com/SarthakMakhija/kademlia/wait"
)

// AddNode folds liveness feedback into the routing table: a newly seen
// node is added outright if its bucket has room; otherwise the bucket's
// oldest node is probed with a PING, and only displaced if that probe
// times out or fails to send.
type AddNode struct {
	routing *routing.Table
	network *network.Network
	self    id.Node
	logger  *log.Logger
}

// NewAddNode builds an AddNode action that pings unresponsive incumbents
// as self.
func NewAddNode(table *routing.Table, n *network.Network, self id.Node) *AddNode {
	return &AddNode{routing: table, network: n, self: self, logger: log.Default().Module("action")}
}

// responseAwaiting is a one-shot future a PING probe's callback resolves
// from whichever goroutine delivers the reply or the timeout first.
type responseAwaiting struct {
	ch chan wait.Result
}

func newResponseAwaiting() *responseAwaiting {
	return &responseAwaiting{ch: make(chan wait.Result, 1)}
}

func (r *responseAwaiting) OnResponse(result wait.Result) {
	r.ch <- result
}

func (r *responseAwaiting) await() wait.Result {
	return <-r.ch
}

// HandleAddNode adds msg's source to the routing table, or, if its bucket
// is full, probes the bucket's oldest node and displaces it only if the
// probe fails or times out.
func (a *AddNode) HandleAddNode(msg *message.AddNode) {
	node := msg.Source.ToNode()
	if node.Equal(a.self) {
		return
	}

	bucketIndex, added := a.routing.Add(node)
	if added {
		return
	}

	oldest, ok := a.routing.FirstNodeIn(bucketIndex)
	if !ok {
		return
	}

	awaiting := newResponseAwaiting()
	ping := &message.Ping{From: message.SourceFromNode(a.self)}
	if _, err := a.network.SendWithMessageIdExpectReply(ping, oldest.Endpoint, awaiting); err != nil {
		a.logger.Debug("ping probe failed to send, evicting incumbent", "incumbent", oldest.String(), "candidate", node.String())
		a.routing.RemoveAndAdd(bucketIndex, oldest, node)
		return
	}

	result := awaiting.await()
	if result.Err != nil {
		a.logger.Debug("ping probe timed out, evicting incumbent", "incumbent", oldest.String(), "candidate", node.String())
		a.routing.RemoveAndAdd(bucketIndex, oldest, node)
	}
}
