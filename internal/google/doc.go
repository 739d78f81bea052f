// Package google manages the Google OAuth token operators use from the
// command line.
//
// The webhook never needs it: the voice platform passes the linked account's
// access token with every request. Operator commands such as availability run
// outside a voice session, so they authorize once with an installed-app flow
// and cache the token on disk, refreshing it as needed.
package google
