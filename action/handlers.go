package action

// Handlers bundles the four request handlers dispatched by the message
// executor. Its promoted methods satisfy executor.MessageHandlers without
// this package needing to import executor.
type Handlers struct {
	*Store
	*SendPingReply
	*FindValue
	*FindNode
}

// NewHandlers bundles already-constructed handlers.
func NewHandlers(store *Store, ping *SendPingReply, findValue *FindValue, findNode *FindNode) Handlers {
	return Handlers{Store: store, SendPingReply: ping, FindValue: findValue, FindNode: findNode}
}
