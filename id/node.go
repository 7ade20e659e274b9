package id

import "fmt"

// Endpoint is a network address (host, port) pair, displayed as "host:port".
type Endpoint struct {
	Host string
	Port uint16
}

// NewEndpoint constructs an Endpoint.
func NewEndpoint(host string, port uint16) Endpoint {
	return Endpoint{Host: host, Port: port}
}

// Address returns the "host:port" string used as the canonical hashing
// input when a Node is constructed from an Endpoint.
func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Address()
}

// Equal reports whether two endpoints are identical.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.Host == other.Host && e.Port == other.Port
}

// Node is a (Id, Endpoint) pair identifying a peer in the DHT.
type Node struct {
	Id       Id
	Endpoint Endpoint
}

// NewNode canonically constructs a Node from an endpoint by hashing its
// address string.
func NewNode(endpoint Endpoint) Node {
	return Node{Id: GenerateFromBytes([]byte(endpoint.Address())), Endpoint: endpoint}
}

// NewNodeWithId constructs a Node with an externally supplied id, for tests
// and wire-decoded sources.
func NewNodeWithId(nodeId Id, endpoint Endpoint) Node {
	return Node{Id: nodeId, Endpoint: endpoint}
}

// Equal compares the whole (Id, Endpoint) pair.
func (n Node) Equal(other Node) bool {
	return n.Id.Equal(other.Id) && n.Endpoint.Equal(other.Endpoint)
}

// String renders the node as "id@host:port".
func (n Node) String() string {
	return fmt.Sprintf("%s@%s", n.Id, n.Endpoint)
}
