// Package session contains the per-run conversation store implementing
// core.MessageStore.
//
// A Conversation is created for every run, grows monotonically and is
// discarded when the run ends. It validates the tool-call/result pairing
// invariant on every append so the loop can never send a conversation with a
// dangling or orphaned tool message to a model backend.
package session
