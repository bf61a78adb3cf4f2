// Package token derives the storage digest of admin session tokens.
//
// Only the digest is persisted; the raw token lives in the admin_session cookie.
//
// Modes:
// - SHA-256(token) when NOOR_TOKEN_HMAC_KEY is unset (development).
// - HMAC-SHA256(token, key) when the key is set. Production deployments can
//   require this mode with NOOR_REQUIRE_TOKEN_HMAC.
//
// Digests are 64 lowercase hex characters so lookups stay exact-match on a
// fixed-width indexed column.
package token
