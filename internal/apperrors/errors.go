package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidRange indicates a malformed or oversized stay range; rejected before any mutation.
var ErrInvalidRange = errors.New("invalid date range")

// ErrCapacityExceeded indicates insufficient inventory for at least one night of a
// requested range. Wrapped errors name the first constraining date.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrInvalidTransition indicates a booking state change that is not permitted from the
// current state. The booking is left unmodified.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrConcurrentModification indicates an optimistic version mismatch; the caller must
// re-read the booking and retry the whole operation.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// ErrAuditRunning indicates a second night audit was attempted for a target date that
// already has a run in progress.
var ErrAuditRunning = errors.New("night audit already running for target date")
