// Package action implements the message handlers invoked by the message
// executors: Store, SendPingReply, FindValue, FindNode, and AddNode.
package action

const (
	// DefaultAlphaReply bounds how many neighbors are returned in a
	// FIND_VALUE/FIND_NODE reply.
	DefaultAlphaReply = 5
)
