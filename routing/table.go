// Package routing implements the Kademlia k-bucket routing table: insertion,
// liveness-based eviction bookkeeping, membership tests, and the closest-
// neighbors selector used by FIND_VALUE/FIND_NODE handlers.
//
// Grounded on the reference codebase's portal RoutingTable (per-bucket
// sync.RWMutex, no global lock), generalized from its fixed 256-bucket/
// 32-byte layout to the spec's 160-bucket/20-byte, differing-bit-position
// indexed layout.
package routing

import (
	"fmt"

	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/metrics"
)

// DefaultBucketCapacity is K, the default maximum number of nodes per bucket.
const DefaultBucketCapacity = 10

// Table is an array of exactly id.BitLength buckets, indexed by the
// differing-bit position between the table's own id and a candidate node.
type Table struct {
	selfId  id.Id
	buckets [id.BitLength]*bucket

	size       *metrics.Gauge
	bucketFull *metrics.Counter
	logger     *log.Logger
}

// NewTable constructs a routing table owned by selfId, with the given
// per-bucket capacity.
func NewTable(selfId id.Id, bucketCapacity int) *Table {
	if bucketCapacity <= 0 {
		bucketCapacity = DefaultBucketCapacity
	}
	t := &Table{
		selfId:     selfId,
		size:       metrics.NewGauge("kademlia_routing_table_size"),
		bucketFull: metrics.NewCounter("kademlia_routing_bucket_full_total"),
		logger:     log.Default().Module("routing"),
	}
	for i := range t.buckets {
		t.buckets[i] = newBucket(bucketCapacity)
	}
	return t
}

// bucketIndex returns the bucket index a node maps to in this table.
func (t *Table) bucketIndex(node id.Node) int {
	return int(t.selfId.DifferingBitPosition(node.Id))
}

// Add inserts node into its bucket if the bucket has room and node is not
// already present. The table's own id must never be submitted by callers.
func (t *Table) Add(node id.Node) (bucketIndex int, added bool) {
	bucketIndex = t.bucketIndex(node)
	added = t.buckets[bucketIndex].add(node)
	if added {
		t.size.Inc()
		t.logger.Debug("node added to routing table", "node", node.String(), "bucket", bucketIndex)
	} else if !t.buckets[bucketIndex].contains(node) {
		t.bucketFull.Inc()
		t.logger.Debug("bucket full, node not added", "node", node.String(), "bucket", bucketIndex)
	}
	return bucketIndex, added
}

// Contains reports whether node is present in its bucket.
func (t *Table) Contains(node id.Node) (bucketIndex int, ok bool) {
	bucketIndex = t.bucketIndex(node)
	return bucketIndex, t.buckets[bucketIndex].contains(node)
}

// FirstNodeIn returns the oldest node in the given bucket, if any. Panics
// if bucketIndex is out of range: this is a programmer-error precondition,
// not a recoverable runtime condition.
func (t *Table) FirstNodeIn(bucketIndex int) (id.Node, bool) {
	if bucketIndex < 0 || bucketIndex >= id.BitLength {
		panic(fmt.Sprintf("routing: bucket index %d out of range [0,%d)", bucketIndex, id.BitLength))
	}
	return t.buckets[bucketIndex].first()
}

// RemoveAndAdd removes toRemove and appends toAdd under a single write
// acquisition of bucketIndex, provided toRemove is present, toAdd is
// absent, and both nodes compute to bucketIndex. No-op otherwise.
func (t *Table) RemoveAndAdd(bucketIndex int, toRemove, toAdd id.Node) {
	if t.bucketIndex(toRemove) != bucketIndex || t.bucketIndex(toAdd) != bucketIndex {
		return
	}
	before := t.buckets[bucketIndex].len()
	t.buckets[bucketIndex].removeAndAdd(toRemove, toAdd)
	after := t.buckets[bucketIndex].len()
	if after != before {
		// removeAndAdd only changes len() when it both removed and added,
		// which nets to zero; a change here would indicate a bug.
		t.logger.Error("routing table bucket size changed unexpectedly", "bucket", bucketIndex)
	}
	t.logger.Debug("bucket eviction", "bucket", bucketIndex, "evicted", toRemove.String(), "added", toAdd.String())
}

// ClosestNeighbors scans buckets outward from target's natural bucket,
// visiting b, b+1, b-1, b+2, b-2, ..., until n unique nodes are collected
// or all buckets are visited. The result is sorted by ascending XOR
// distance to target.
func (t *Table) ClosestNeighbors(target id.Id, n int) *ClosestNeighbors {
	result := NewClosestNeighbors(n, target)

	start := int(t.selfId.DifferingBitPosition(target))
	for _, idx := range bucketScanOrder(start, id.BitLength) {
		if !result.AddMissing(t.buckets[idx].snapshot()) {
			break
		}
	}
	result.SortAscendingByDistance()
	return result
}

// bucketScanOrder returns the sequence b, b+1, b-1, b+2, b-2, ... over
// [0, limit), stopping once every in-range index has been produced once.
func bucketScanOrder(start, limit int) []int {
	order := make([]int, 0, limit)
	if start >= 0 && start < limit {
		order = append(order, start)
	}
	for offset := 1; len(order) < limit; offset++ {
		added := false
		if up := start + offset; up >= 0 && up < limit {
			order = append(order, up)
			added = true
		}
		if down := start - offset; down >= 0 && down < limit {
			order = append(order, down)
			added = true
		}
		if !added {
			break
		}
	}
	return order
}

// Len returns the total number of nodes across all buckets.
func (t *Table) Len() int {
	total := 0
	for _, b := range t.buckets {
		total += b.len()
	}
	return total
}

// BucketLen returns the number of nodes in a specific bucket.
func (t *Table) BucketLen(bucketIndex int) int {
	if bucketIndex < 0 || bucketIndex >= id.BitLength {
		return 0
	}
	return t.buckets[bucketIndex].len()
}

// SelfId returns the node id this table is routing on behalf of.
func (t *Table) SelfId() id.Id {
	return t.selfId
}
