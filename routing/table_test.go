package routing

import (
	"fmt"
	"testing"

	"github.com/SarthakMakhija/kademlia/id"
)

func nodeAt(address string) id.Node {
	return id.NewNode(id.NewEndpoint(address, 9000))
}

func TestAddTwiceReturnsFalseSecondTime(t *testing.T) {
	table := NewTable(id.GenerateFromBytes([]byte("self")), DefaultBucketCapacity)
	n := nodeAt("peer-1")

	_, added := table.Add(n)
	if !added {
		t.Fatalf("expected first add to succeed")
	}
	before := table.Len()

	bucketIndex, added := table.Add(n)
	if added {
		t.Fatalf("expected second add to report false")
	}
	if table.Len() != before {
		t.Fatalf("expected table size unchanged, got %d want %d", table.Len(), before)
	}
	if idx, _ := table.Contains(n); idx != bucketIndex {
		t.Fatalf("bucket index mismatch")
	}
}

func TestBucketCapacityOneEvictsNothingAutomatically(t *testing.T) {
	self := id.GenerateFromBytes([]byte("self"))
	table := NewTable(self, 1)

	first := nodeAt("node-0")
	firstBucket := int(self.DifferingBitPosition(first.Id))

	var second id.Node
	found := false
	for i := 1; i < 10000 && !found; i++ {
		candidate := nodeAt(fmt.Sprintf("node-%d", i))
		if int(self.DifferingBitPosition(candidate.Id)) == firstBucket && !candidate.Equal(first) {
			second = candidate
			found = true
		}
	}
	if !found {
		t.Skip("could not find two distinct nodes in the same bucket within search bound")
	}

	_, addedFirst := table.Add(first)
	if !addedFirst {
		t.Fatalf("expected first add to succeed")
	}
	_, addedSecond := table.Add(second)
	if addedSecond {
		t.Fatalf("expected second add to the full bucket to fail")
	}
	if _, ok := table.Contains(second); ok {
		t.Fatalf("expected second node to not be in the table")
	}
}

func TestRemoveAndAddSwapsIncumbent(t *testing.T) {
	self := id.GenerateFromBytes([]byte("self"))
	table := NewTable(self, 1)

	x := nodeAt("incumbent")
	bucketIndex, added := table.Add(x)
	if !added {
		t.Fatalf("expected incumbent to be added")
	}

	y := findNodeInSameBucket(self, bucketIndex, x)

	table.RemoveAndAdd(bucketIndex, x, y)

	if _, ok := table.Contains(x); ok {
		t.Fatalf("expected incumbent to be removed")
	}
	if _, ok := table.Contains(y); !ok {
		t.Fatalf("expected replacement to be present")
	}
}

func TestFirstNodeInReturnsOldest(t *testing.T) {
	self := id.GenerateFromBytes([]byte("self"))
	table := NewTable(self, DefaultBucketCapacity)
	n := nodeAt("oldest")
	bucketIndex, _ := table.Add(n)

	first, ok := table.FirstNodeIn(bucketIndex)
	if !ok || !first.Equal(n) {
		t.Fatalf("expected oldest node to be %+v, got %+v", n, first)
	}
}

func TestFirstNodeInPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range bucket index")
		}
	}()
	table := NewTable(id.GenerateFromBytes([]byte("self")), DefaultBucketCapacity)
	table.FirstNodeIn(id.BitLength)
}

func TestClosestNeighborsBoundedAndSorted(t *testing.T) {
	self := id.GenerateFromBytes([]byte("self"))
	table := NewTable(self, DefaultBucketCapacity)

	for i := 0; i < 50; i++ {
		table.Add(nodeAt(fmt.Sprintf("node-%d", i)))
	}

	target := id.GenerateFromBytes([]byte("target"))
	result := table.ClosestNeighbors(target, 5)
	nodes := result.Nodes()

	if len(nodes) > 5 {
		t.Fatalf("expected at most 5 nodes, got %d", len(nodes))
	}
	seen := map[id.Id]struct{}{}
	for i, n := range nodes {
		if _, dup := seen[n.Id]; dup {
			t.Fatalf("duplicate node in closest neighbors result")
		}
		seen[n.Id] = struct{}{}
		if i > 0 {
			prevDist := target.DistanceFrom(nodes[i-1].Id)
			currDist := target.DistanceFrom(n.Id)
			if prevDist.Cmp(currDist) > 0 {
				t.Fatalf("expected ascending distance order")
			}
		}
	}
}

func findNodeInSameBucket(self id.Id, bucketIndex int, exclude id.Node) id.Node {
	for i := 0; i < 100000; i++ {
		candidate := nodeAt(fmt.Sprintf("candidate-%d", i))
		if int(self.DifferingBitPosition(candidate.Id)) == bucketIndex && !candidate.Equal(exclude) {
			return candidate
		}
	}
	panic("no candidate found in bucket")
}
