// Package session keeps per-user, per-flow conversation state. State has an
// explicit lifecycle: created on flow entry, cleared on completion, cancel
// or error.
package session

import "context"

// Store persists one JSON-encoded state value per (user, flow) pair.
type Store interface {
	// Get decodes the stored state into dest; ok is false when no state
	// exists for the pair.
	Get(ctx context.Context, userID int64, flow string, dest interface{}) (ok bool, err error)
	Set(ctx context.Context, userID int64, flow string, state interface{}) error
	Clear(ctx context.Context, userID int64, flow string) error
}
