// Package wait implements message-id correlation for outstanding requests:
// a callback is registered against a message id when a request is sent, and
// is resolved exactly once, either by a matching reply or by expiry.
//
// Grounded on the reference codebase's RequestManager (timeout tracking via
// a background expiry loop, sync.Once-guarded shutdown) generalized to carry
// arbitrary result types instead of raw bytes, and on the original
// implementation's WaitingList/TimedCallback/ExpiredPendingResponsesCleaner
// split, which WaitingList/TimedCallback/the sweeper goroutine mirror.
package wait

import (
	"fmt"
	"sync"
	"time"

	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/metrics"
)

// ResponseTimeoutError reports that a registered message id expired before
// any reply arrived.
type ResponseTimeoutError struct {
	MessageId message.MessageId
}

func (e ResponseTimeoutError) Error() string {
	return fmt.Sprintf("wait: message id %d timed out waiting for a response", e.MessageId)
}

// Result is delivered to a Callback exactly once: either the reply message
// or a timeout error, never both, never more than once.
type Result struct {
	Message message.Message
	Err     error
}

// Callback is invoked with the eventual Result for a registered message id.
type Callback interface {
	OnResponse(result Result)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(result Result)

func (f CallbackFunc) OnResponse(result Result) { f(result) }

// TimedCallback pairs a callback with the time it was registered, so the
// sweeper can tell whether it has outlived ExpireAfter.
type TimedCallback struct {
	callback   Callback
	registered time.Time
}

// Options configures a WaitingList's expiry behavior.
type Options struct {
	ExpireAfter time.Duration
	SweepEvery  time.Duration
}

// DefaultOptions matches the reference codebase's RequestManager defaults,
// scaled down for a protocol where replies are expected within a few
// round-trips rather than tens of seconds.
func DefaultOptions() Options {
	return Options{
		ExpireAfter: 5 * time.Second,
		SweepEvery:  1 * time.Second,
	}
}

// WaitingList maps in-flight message ids to their pending callbacks, and
// resolves each at most once: by a matching reply, or by expiry.
type WaitingList struct {
	mu      sync.Mutex
	entries map[message.MessageId]TimedCallback
	clock   Clock
	options Options

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	expired *metrics.Counter
	active  *metrics.Gauge
}

// NewWaitingList starts a WaitingList with its background sweeper running.
func NewWaitingList(options Options, clock Clock) *WaitingList {
	if options.ExpireAfter <= 0 || options.SweepEvery <= 0 {
		options = DefaultOptions()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	w := &WaitingList{
		entries: make(map[message.MessageId]TimedCallback),
		clock:   clock,
		options: options,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		expired: metrics.NewCounter("kademlia_wait_expired_total"),
		active:  metrics.NewGauge("kademlia_wait_active"),
	}
	go w.sweepLoop()
	return w
}

// Add registers callback under messageId. An existing registration for the
// same id is overwritten; the earlier callback is never invoked (callers
// are expected to use freshly minted ids per send, so this only matters for
// tests and is documented, not guarded against).
func (w *WaitingList) Add(messageId message.MessageId, callback Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, existed := w.entries[messageId]; !existed {
		w.active.Inc()
	}
	w.entries[messageId] = TimedCallback{callback: callback, registered: w.clock.Now()}
}

// Contains reports whether messageId is currently registered.
func (w *WaitingList) Contains(messageId message.MessageId) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[messageId]
	return ok
}

// HandleResponse removes the entry for messageId, if present, and invokes
// its callback with result. Returns false if no entry was found, meaning
// the id already expired, was already resolved, or was never registered.
func (w *WaitingList) HandleResponse(messageId message.MessageId, result Result) bool {
	w.mu.Lock()
	entry, ok := w.entries[messageId]
	if ok {
		delete(w.entries, messageId)
		w.active.Dec()
	}
	w.mu.Unlock()

	if !ok {
		return false
	}
	entry.callback.OnResponse(result)
	return true
}

// Stop signals the sweeper to exit and waits for it to do so.
func (w *WaitingList) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}

func (w *WaitingList) sweepLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.options.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *WaitingList) sweep() {
	var expired []struct {
		id       message.MessageId
		callback Callback
	}

	w.mu.Lock()
	for id, entry := range w.entries {
		if w.clock.Since(entry.registered) > w.options.ExpireAfter {
			expired = append(expired, struct {
				id       message.MessageId
				callback Callback
			}{id, entry.callback})
			delete(w.entries, id)
			w.active.Dec()
		}
	}
	w.mu.Unlock()

	for _, e := range expired {
		w.expired.Inc()
		e.callback.OnResponse(Result{Err: ResponseTimeoutError{MessageId: e.id}})
	}
}

// Len returns the number of currently registered callbacks.
func (w *WaitingList) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
