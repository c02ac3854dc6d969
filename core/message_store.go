package core

// MessageStore is the ordered, append-only conversation history of a single
// run. Implementations enforce that every tool-role message answers a tool
// call emitted by an earlier assistant message.
type MessageStore interface {
	Append(msg Message) error
	Messages() []Message
	Len() int
	Last(role Role) (Message, bool)
	// PendingToolCalls returns ids of tool calls that have no result yet.
	PendingToolCalls() []string
}
