// Package kademlia assembles the routing table, waiting list, network,
// executors, and handlers into a runnable node, and bridges accepted
// connections into the executors.
package kademlia

import (
	"errors"
	"time"
)

// Config collects every tunable option the core exposes. Constructed and
// validated the way the reference codebase's node.Config does: plain
// field validation, no env/file loading.
type Config struct {
	BucketCapacity                         uint
	ExpirePendingResponsesAfter             time.Duration
	RunExpiredPendingResponsesCheckerEvery  time.Duration
	ExecutorQueueCapacity                   uint
	ClosestNeighborsReplySize               uint
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		BucketCapacity:                         10,
		ExpirePendingResponsesAfter:            120 * time.Second,
		RunExpiredPendingResponsesCheckerEvery: 100 * time.Millisecond,
		ExecutorQueueCapacity:                  100,
		ClosestNeighborsReplySize:              5,
	}
}

// Validate reports whether Config's fields hold sane values.
func (c Config) Validate() error {
	if c.BucketCapacity == 0 {
		return errors.New("kademlia: BucketCapacity must be positive")
	}
	if c.ExpirePendingResponsesAfter <= 0 {
		return errors.New("kademlia: ExpirePendingResponsesAfter must be positive")
	}
	if c.RunExpiredPendingResponsesCheckerEvery <= 0 {
		return errors.New("kademlia: RunExpiredPendingResponsesCheckerEvery must be positive")
	}
	if c.ExecutorQueueCapacity == 0 {
		return errors.New("kademlia: ExecutorQueueCapacity must be positive")
	}
	if c.ClosestNeighborsReplySize == 0 {
		return errors.New("kademlia: ClosestNeighborsReplySize must be positive")
	}
	return nil
}
