package executor

import (
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/metrics"
)

// AddNodeHandler is the single action AddNodeExecutor dispatches to.
type AddNodeHandler interface {
	HandleAddNode(*message.AddNode)
}

// AddNodeExecutor serializes AddNode and ShutDown onto its own worker
// goroutine, independent of MessageExecutor, so routing table liveness
// feedback is never head-of-line blocked behind request/reply traffic.
type AddNodeExecutor struct {
	worker *worker
}

// NewAddNodeExecutor builds an AddNodeExecutor with the given queue
// capacity (DefaultQueueCapacity if non-positive).
func NewAddNodeExecutor(capacity int, handler AddNodeHandler) *AddNodeExecutor {
	submitted := metrics.NewCounter("kademlia_executor_addnode_submitted_total")
	depth := metrics.NewGauge("kademlia_executor_addnode_queue_depth")

	return &AddNodeExecutor{
		worker: newWorker(capacity, func(m message.Message) MessageStatus {
			switch typed := m.(type) {
			case *message.AddNode:
				handler.HandleAddNode(typed)
				return AddNodeDone
			case *message.ShutDown:
				return ShutdownDone
			default:
				return AddNodeDone
			}
		}, submitted, depth),
	}
}

// Submit enqueues m for processing, returning a response that resolves
// once the worker has handled it. Returns ErrQueueClosed after Shutdown.
func (e *AddNodeExecutor) Submit(m message.Message) (*MessageResponse, error) {
	return e.worker.submit(m)
}

// Shutdown submits a ShutDown message, causing the worker to exit after
// processing it and close the submission queue.
func (e *AddNodeExecutor) Shutdown() (*MessageResponse, error) {
	return e.Submit(message.ShutdownMessage())
}
