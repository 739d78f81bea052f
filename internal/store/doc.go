// Package store provides the durable backends for user preference maps.
//
// Three backends implement preferences.Store:
//
//   - memory: a mutex-guarded map, for development and tests
//   - sqlite: a single-file database using the pure Go modernc.org/sqlite driver
//   - redis: one JSON value per user in a Redis instance
//
// New selects a backend from a Config and wraps it so that every Load and Save
// is traced, counted and logged. Backends always hand out copies, so callers
// may keep the maps they receive without further locking.
package store
