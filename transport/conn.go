// Package transport implements the TCP-backed framing layer that carries
// wire messages between nodes, plus an in-memory pipe for tests.
//
// Grounded on the reference codebase's MsgPipe/MsgPipeEnd channel-based
// in-memory transport (msg.go), generalized from raw Msg frames to
// message.Message values via message.FrameReadWriter.
package transport

import (
	"net"

	"github.com/SarthakMakhija/kademlia/message"
)

// Conn wraps a net.Conn to implement message.FrameReadWriter.
type Conn struct {
	inner net.Conn
}

// NewConn wraps an established net.Conn.
func NewConn(inner net.Conn) *Conn {
	return &Conn{inner: inner}
}

func (c *Conn) ReadFrame() (message.Message, error) {
	return message.ReadFrame(c.inner)
}

func (c *Conn) WriteFrame(m message.Message) error {
	return message.WriteFrame(c.inner, m)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.inner.Close()
}
