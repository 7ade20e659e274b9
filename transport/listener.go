package transport

import (
	"net"

	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
)

// ConnectionHandler processes one accepted connection. Implementations
// read a single frame and submit it to the executors; see kademlia.Node.
type ConnectionHandler func(message.FrameReadWriter)

// Listener accepts TCP connections and dispatches each to a
// ConnectionHandler on its own goroutine.
type Listener struct {
	net.Listener
	logger *log.Logger
}

// Listen binds address ("host:port") and returns a Listener ready to
// Serve.
func Listen(address string) (*Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &Listener{Listener: l, logger: log.Default().Module("transport")}, nil
}

// Serve accepts connections until the listener is closed, handing each to
// handler on its own goroutine.
func (l *Listener) Serve(handler ConnectionHandler) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go handler(NewConn(conn))
	}
}
