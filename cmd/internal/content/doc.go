// Package content manages the public site content edited from the admin
// panel: the single settings row (contact details, Jummah time) and the
// announcements list.
//
// Reads are public. Writes are mounted behind the admin session middleware
// by the caller.
package content
