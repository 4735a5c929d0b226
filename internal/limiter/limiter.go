// Package limiter implements the soft usage throttle: an attempt
// counter capped at a fixed threshold and a completion time lock that
// self-clears after a fixed duration. Both are keyed by client IP and
// are a UX throttle, not a security boundary.
package limiter

import "context"

type Limiter interface {
	// Allowed reports whether the client is still under the attempt
	// threshold. Consulted at session start.
	Allowed(ctx context.Context, clientIP string) (bool, error)

	// RecordCompletion increments the client's attempt count. Called
	// only on successful completion, never on abandonment.
	RecordCompletion(ctx context.Context, clientIP string) error

	// Locked reports whether the client's completion time lock is
	// still active.
	Locked(ctx context.Context, clientIP string) (bool, error)

	// Lock sets the completion time lock. It expires on its own.
	Lock(ctx context.Context, clientIP string) error
}
