package transport

import "net"

// Pipe returns two connected in-memory Conns, useful for tests that need a
// pair of "connected" endpoints without opening a real socket. Grounded on
// the reference codebase's MsgPipe, rebuilt atop net.Pipe rather than
// hand-rolled channels since message.FrameReadWriter already knows how to
// frame over any io.Reader/io.Writer.
func Pipe() (*Conn, *Conn) {
	a, b := net.Pipe()
	return NewConn(a), NewConn(b)
}
