// Package chat holds the in-memory state of the chat room: the presence
// registry of joined participants, the append-only message log, and the
// pagination and presentation helpers used by the moderation views.
//
// None of the types in this package are safe for concurrent use. A single
// goroutine (the server hub) owns a Room and performs every read and write.
package chat
