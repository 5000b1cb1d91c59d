// Package session provides conversation history persistence for goswarm.
//
// A Store keeps the message history of a conversation keyed by session id so
// successive runs can resume where the previous one stopped. The built-in
// InMemoryStore is volatile and best suited for tests and demos; durable
// backends implement the same Store interface.
package session
