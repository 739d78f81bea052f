// Package platform holds the voice platform's webhook envelopes, a builder
// for responses, and a client for the device settings API that resolves a
// user's time zone.
package platform
