package executor

import "context"

// MessageResponse is a one-shot future resolved by an executor's worker
// once it finishes handling the message that produced this response.
type MessageResponse struct {
	ch chan MessageStatus
}

func newMessageResponse() *MessageResponse {
	return &MessageResponse{ch: make(chan MessageStatus, 1)}
}

// complete delivers status to the response. Non-blocking: if the buffer is
// full (impossible for a correctly used one-shot channel) or nobody is
// listening, the send is simply dropped.
func (r *MessageResponse) complete(status MessageStatus) {
	select {
	case r.ch <- status:
	default:
	}
}

// Await blocks until the response is completed or ctx is done, whichever
// happens first.
func (r *MessageResponse) Await(ctx context.Context) (MessageStatus, error) {
	select {
	case status := <-r.ch:
		return status, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
