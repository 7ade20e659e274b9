package action

import (
	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/network"
)

// SendPingReply answers PING requests. The reply is sent from a detached
// goroutine so the executor's worker is never blocked on a peer's socket.
type SendPingReply struct {
	network *network.Network
	self    id.Node
	logger  *log.Logger
}

// NewSendPingReply builds a SendPingReply action replying as self.
func NewSendPingReply(n *network.Network, self id.Node) *SendPingReply {
	return &SendPingReply{network: n, self: self, logger: log.Default().Module("action")}
}

// HandlePing replies to msg.From with a PingReply carrying msg's message
// id. A PING without a message id cannot be correlated by the sender and
// is dropped with a logged warning rather than acted on.
func (a *SendPingReply) HandlePing(msg *message.Ping) {
	if msg.MessageId == nil {
		a.logger.Warn("dropping ping without a message id", "from", msg.From.Endpoint.String())
		return
	}
	messageId := *msg.MessageId
	from := msg.From

	go func() {
		reply := &message.PingReply{MessageId: messageId, To: message.SourceFromNode(a.self)}
		if err := a.network.Send(reply, from.Endpoint); err != nil {
			a.logger.Error("failed to send ping reply", "to", from.Endpoint.String(), "error", err)
		}
	}()
}
