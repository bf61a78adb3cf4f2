// Package password hashes and verifies admin passwords.
//
// New hashes are Argon2id in PHC form. Verify also accepts bcrypt hashes
// carried over from the previous deployment so existing admins can log in;
// NeedsRehash flags those for replacement on the next password change.
//
// Hash strings are untrusted input: Verify rejects malformed encodings and
// parameters that exceed the configured bounds.
package password
