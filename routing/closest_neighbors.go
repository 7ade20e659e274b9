package routing

import (
	"sort"

	"github.com/SarthakMakhija/kademlia/id"
)

// ClosestNeighbors is a transient, deduplicated, size-bounded collection of
// nodes accumulated while scanning buckets for a query id, then sorted by
// ascending XOR distance from that id.
type ClosestNeighbors struct {
	capacity int
	target   id.Id
	seen     map[id.Id]struct{}
	nodes    []id.Node
}

// NewClosestNeighbors builds an empty collector bounded to capacity nodes,
// ranked by distance to target.
func NewClosestNeighbors(capacity int, target id.Id) *ClosestNeighbors {
	return &ClosestNeighbors{
		capacity: capacity,
		target:   target,
		seen:     make(map[id.Id]struct{}, capacity),
	}
}

// AddMissing appends each previously unseen node (by id) until capacity is
// reached. Returns false once capacity has been reached, signalling the
// outer scan to stop visiting further buckets.
func (c *ClosestNeighbors) AddMissing(nodes []id.Node) bool {
	for _, n := range nodes {
		if len(c.nodes) >= c.capacity {
			return false
		}
		if _, ok := c.seen[n.Id]; ok {
			continue
		}
		c.seen[n.Id] = struct{}{}
		c.nodes = append(c.nodes, n)
	}
	return len(c.nodes) < c.capacity
}

// SortAscendingByDistance orders the collected nodes by ascending XOR
// distance to the target id.
func (c *ClosestNeighbors) SortAscendingByDistance() {
	sort.Slice(c.nodes, func(i, j int) bool {
		di := c.target.DistanceFrom(c.nodes[i].Id)
		dj := c.target.DistanceFrom(c.nodes[j].Id)
		return di.Cmp(dj) < 0
	})
}

// Nodes returns the collected nodes in their current order.
func (c *ClosestNeighbors) Nodes() []id.Node {
	out := make([]id.Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Len returns the number of nodes collected so far.
func (c *ClosestNeighbors) Len() int {
	return len(c.nodes)
}
