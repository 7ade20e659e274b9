package action

import (
	"net"

	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/message"
)

// recordingDialer hands back one side of an in-memory net.Pipe per dial,
// decoding whatever frame arrives on the other side and handing it to
// onMessage.
type recordingDialer struct {
	onMessage func(message.Message)
}

func (d recordingDialer) Dial(endpoint id.Endpoint) (net.Conn, error) {
	client, server := net.Pipe()
	go func() {
		defer server.Close()
		m, err := message.ReadFrame(server)
		if err != nil {
			return
		}
		d.onMessage(m)
	}()
	return client, nil
}

func selfNode(address string) id.Node {
	return id.NewNode(id.NewEndpoint(address, 9000))
}
