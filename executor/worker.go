// Package executor implements the serialized, single-consumer dispatch
// queues that sit between the connection handler and the message handlers:
// MessageExecutor for request/reply traffic, AddNodeExecutor for routing
// table liveness feedback.
//
// Grounded on the reference codebase's Multiplexer/ProtoRW single-reader
// channel-dispatch pattern (multiplexer.go), narrowed from protocol-code
// routing to message-kind routing.
package executor

import (
	"errors"
	"sync"

	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/metrics"
)

// ErrQueueClosed is returned by Submit once the worker has processed a
// ShutDown message and closed its queue.
var ErrQueueClosed = errors.New("executor: queue is closed")

// DefaultQueueCapacity matches the reference codebase's bounded channel
// sizing for per-connection dispatch queues.
const DefaultQueueCapacity = 100

type submission struct {
	message  message.Message
	response *MessageResponse
}

// dispatchFunc handles one message synchronously and reports what it did.
type dispatchFunc func(message.Message) MessageStatus

// worker is the shared single-consumer loop underlying both executors.
type worker struct {
	queue chan submission

	mu     sync.Mutex
	closed bool

	dispatch dispatchFunc

	submitted *metrics.Counter
	depth     *metrics.Gauge
}

func newWorker(capacity int, dispatch dispatchFunc, submitted *metrics.Counter, depth *metrics.Gauge) *worker {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	w := &worker{
		queue:     make(chan submission, capacity),
		dispatch:  dispatch,
		submitted: submitted,
		depth:     depth,
	}
	go w.run()
	return w
}

func (w *worker) submit(m message.Message) (response *MessageResponse, err error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrQueueClosed
	}
	w.mu.Unlock()

	response = newMessageResponse()
	defer func() {
		// The worker may close the queue concurrently right after
		// observing ShutDown; a send landing in that window panics.
		if recover() != nil {
			response, err = nil, ErrQueueClosed
		}
	}()
	w.queue <- submission{message: m, response: response}
	w.submitted.Inc()
	w.depth.Set(int64(len(w.queue)))
	return response, nil
}

func (w *worker) run() {
	for sub := range w.queue {
		status := w.dispatch(sub.message)
		w.depth.Set(int64(len(w.queue)))
		if status == ShutdownDone {
			// Close before completing, so a caller that has awaited
			// ShutdownDone always sees ErrQueueClosed on its next Submit.
			w.mu.Lock()
			w.closed = true
			w.mu.Unlock()
			close(w.queue)
			sub.response.complete(status)
			return
		}
		sub.response.complete(status)
	}
}
