package workorder

import "errors"

// Sentinel errors for the work order lifecycle. Callers test with
// errors.Is; wrapped messages carry the detail.
var (
	// ErrInvalidTransition means a state machine precondition was
	// violated. Surfaced to the caller, never retried automatically.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidRate means a resource's units-per-hour is zero or
	// negative at work order creation.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrInvalidQuantity means a delivered quantity is non-positive or
	// would exceed the target.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrConcurrentModification means a compare-and-set lost the race.
	// The caller should re-read current state before retrying.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrReferenceNotFound means a referenced job, resource or work
	// order does not exist.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrPartialSplitInconsistency means a partial order has no
	// remainder; repaired by ReconcileSplits.
	ErrPartialSplitInconsistency = errors.New("partial split inconsistency")
)
