// Package identity holds mosque admin accounts and verifies their credentials.
//
// Admins are provisioned out-of-band (CLI or seed); there is no registration
// flow. The Verifier is the only component that sees password hashes: callers
// receive an Admin (id + username) and never the hash.
package identity
