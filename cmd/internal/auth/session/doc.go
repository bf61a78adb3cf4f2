// Package session issues, validates and revokes admin sessions.
//
// A session is an opaque random token handed to the browser in the
// admin_session cookie. The server stores only the token digest together with
// the admin id and an absolute expiry. Each admin holds at most one session:
// issuing a new one deletes the previous rows in the same transaction.
//
// Expired rows are removed lazily when presented, or in bulk through
// CleanupExpiredSessions run by an external scheduler. Nothing here starts
// background goroutines.
package session
