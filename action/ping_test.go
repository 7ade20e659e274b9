package action

import (
	"testing"
	"time"

	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/wait"
)

func TestHandlePingSendsReplyWithSameMessageId(t *testing.T) {
	received := make(chan message.Message, 1)
	dialer := recordingDialer{onMessage: func(m message.Message) { received <- m }}
	n := network.NewNetwork(dialer, wait.NewWaitingList(wait.DefaultOptions(), wait.SystemClock{}))

	self := selfNode("self-node")
	a := NewSendPingReply(n, self)

	messageId := message.MessageId(42)
	from := message.SourceFromNode(selfNode("requester"))
	a.HandlePing(&message.Ping{MessageId: &messageId, From: from})

	select {
	case m := <-received:
		reply, ok := m.(*message.PingReply)
		if !ok {
			t.Fatalf("expected a PingReply, got %T", m)
		}
		if reply.MessageId != messageId {
			t.Fatalf("expected message id %d, got %d", messageId, reply.MessageId)
		}
		if reply.To.NodeId != self.Id {
			t.Fatalf("expected reply to identify self as the responder")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a ping reply to have been sent")
	}
}

func TestHandlePingDropsWithoutMessageId(t *testing.T) {
	dialer := recordingDialer{onMessage: func(message.Message) {
		t.Fatalf("expected no message to be sent when message id is missing")
	}}
	n := network.NewNetwork(dialer, wait.NewWaitingList(wait.DefaultOptions(), wait.SystemClock{}))
	a := NewSendPingReply(n, selfNode("self-node"))

	a.HandlePing(&message.Ping{From: message.SourceFromNode(selfNode("requester"))})
	time.Sleep(50 * time.Millisecond)
}
