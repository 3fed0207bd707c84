package gamification

import "fmt"

// ValidationError rejects malformed or out-of-range input before any state
// is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ConcurrencyConflictError reports an atomic precondition that kept failing
// after internal retries. Callers treat it as retryable.
type ConcurrencyConflictError struct {
	Op string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict during %s", e.Op)
}

// StorageUnavailableError wraps a storage failure. The core performs no
// retries of its own; callers decide.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageUnavailableError{Op: op, Err: err}
}
