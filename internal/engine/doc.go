// Package engine implements the storefront state engine.
//
// The engine holds the single authoritative State value, accepts actions and
// produces the next state through Reduce, a pure and total transition
// function.
//
// ARCHITECTURE:
//
// Single-Writer Commit:
// Every transition is committed under one mutex, one at a time. This gives
// the same guarantees as a single UI thread:
//   - A transition runs to completion before the next one starts
//   - Observers only ever see committed states
//   - Each commit gets the next version number
//
// Commit Flow:
//  1. Dispatch(action) or DispatchFunc(build) takes the lock
//  2. Reduce(prev, action) computes next; version is incremented
//  3. The lock is released
//  4. If the cart or the orders changed, observers receive a Change
//
// Compound transitions:
// PlaceOrder appends an order and clears the cart in one Reduce call.
// DispatchFunc lets a caller derive the action from the committed state
// (the order snapshot) inside the same critical section, so no other action
// can interleave between snapshot and commit.
//
// Rehydration:
// Rehydrate restores a persisted Snapshot by dispatching the same actions a
// user would, never by assigning State directly.
package engine
