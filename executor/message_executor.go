package executor

import (
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/metrics"
	"github.com/SarthakMakhija/kademlia/wait"
)

// MessageHandlers is the set of actions MessageExecutor dispatches to. It
// is satisfied by package action's handler types; defining it here keeps
// executor decoupled from any one handler implementation.
type MessageHandlers interface {
	HandleStore(*message.Store)
	HandlePing(*message.Ping)
	HandleFindValue(*message.FindValue)
	HandleFindNode(*message.FindNode)
}

// MessageExecutor serializes Store, Ping, FindValue, FindNode, every reply
// variant, and ShutDown onto a single worker goroutine.
type MessageExecutor struct {
	worker *worker
}

// NewMessageExecutor builds a MessageExecutor with the given queue
// capacity (DefaultQueueCapacity if non-positive), dispatching requests to
// handlers and resolving replies against waitingList.
func NewMessageExecutor(capacity int, handlers MessageHandlers, waitingList *wait.WaitingList) *MessageExecutor {
	submitted := metrics.NewCounter("kademlia_executor_message_submitted_total")
	depth := metrics.NewGauge("kademlia_executor_message_queue_depth")

	e := &MessageExecutor{}
	e.worker = newWorker(capacity, func(m message.Message) MessageStatus {
		return e.dispatch(m, handlers, waitingList)
	}, submitted, depth)
	return e
}

func (e *MessageExecutor) dispatch(m message.Message, handlers MessageHandlers, waitingList *wait.WaitingList) MessageStatus {
	switch typed := m.(type) {
	case *message.Store:
		handlers.HandleStore(typed)
		return StoreDone
	case *message.Ping:
		handlers.HandlePing(typed)
		return PingDone
	case *message.FindValue:
		handlers.HandleFindValue(typed)
		return FindValueDone
	case *message.FindNode:
		handlers.HandleFindNode(typed)
		return FindNodeDone
	case *message.PingReply:
		waitingList.HandleResponse(typed.MessageId, wait.Result{Message: typed})
		return ReplyDone
	case *message.FindValueReply:
		waitingList.HandleResponse(typed.MessageId, wait.Result{Message: typed})
		return ReplyDone
	case *message.FindNodeReply:
		waitingList.HandleResponse(typed.MessageId, wait.Result{Message: typed})
		return ReplyDone
	case *message.ShutDown:
		return ShutdownDone
	default:
		return ReplyDone
	}
}

// Submit enqueues m for processing, returning a response that resolves
// once the worker has handled it. Returns ErrQueueClosed after Shutdown.
func (e *MessageExecutor) Submit(m message.Message) (*MessageResponse, error) {
	return e.worker.submit(m)
}

// Shutdown submits a ShutDown message, causing the worker to exit after
// processing it and close the submission queue.
func (e *MessageExecutor) Shutdown() (*MessageResponse, error) {
	return e.Submit(message.ShutdownMessage())
}
