// Package store persists the durable parts of storefront state.
//
// Two fragments are stored, each as a complete JSON document that is
// replaced on every save:
//   - cart: the cart lines in first-add order
//   - orders: the order history, oldest first
//
// # Backends
//
// Fragments live in a Backend. Three are provided:
//   - SQLite: one row per fragment in a WAL-mode database; the table schema
//     is versioned with PRAGMA user_version
//   - FileBackend: one JSON file per fragment, replaced atomically
//   - Memory: process-local, for tests
//
// # Failure Model
//
// Loading fails open: a missing or corrupt fragment is logged and treated as
// empty, and the other fragment still loads. Saving happens off the commit
// path through a Writer, which logs failures and never surfaces them to
// the engine.
package store
