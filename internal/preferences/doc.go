// Package preferences models a user's preferred time-of-day windows per event
// category, and the pure operations used to change them.
//
// Preference maps are values: With and Without return new maps and never
// mutate their input. Persisting a map is left to a Store implementation,
// which the skill orchestrator calls after each mutation.
package preferences
