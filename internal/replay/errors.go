package replay

import (
	"errors"
	"fmt"
)

// SkipReason categorizes why a group or entry was skipped instead of
// applied. Skips are part of a normal pass; they never abort it.
type SkipReason string

const (
	// SkipMissingField: an insert group lacks a declared required field.
	SkipMissingField SkipReason = "MISSING_FIELD"

	// SkipDuplicateKey: the target primary key already exists. This is
	// the idempotence contract, not an error.
	SkipDuplicateKey SkipReason = "DUPLICATE_KEY"

	// SkipMissingTarget: an update references a row that does not exist.
	SkipMissingTarget SkipReason = "MISSING_TARGET"

	// SkipConversion: a detail value could not be converted to the
	// target column's native type.
	SkipConversion SkipReason = "CONVERSION"
)

// StoreFailureError wraps an underlying storage error. Unlike skips, a
// store failure aborts the remainder of the pass: per-group transactions
// guarantee no group is left half-applied, but nothing after the failure
// runs.
type StoreFailureError struct {
	Op  string
	Err error
}

func (e *StoreFailureError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreFailureError) Unwrap() error {
	return e.Err
}

// IsStoreFailure reports whether err is (or wraps) a store failure.
func IsStoreFailure(err error) bool {
	var sf *StoreFailureError
	return errors.As(err, &sf)
}

func storeFailure(op string, err error) error {
	return &StoreFailureError{Op: op, Err: err}
}
