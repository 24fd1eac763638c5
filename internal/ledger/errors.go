package ledger

import (
	"errors"
	"fmt"

	"github.com/diewo77/tailorledger/internal/validation"
)

// ErrNotFound marks a referenced order/customer/category/measurement that
// does not exist. Surfaced to the caller, no retry.
var ErrNotFound = errors.New("record not found")

// ValidationError carries field-level violations. The operation was rolled
// back; nothing was persisted and the caller should re-prompt.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", map[string]string(e.Violations))
}

// ConsistencyError wraps a store-level failure mid-transaction. The whole
// operation was rolled back; the store is back at its pre-operation state.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: operation rolled back: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// CategoryInUseError refuses a category delete while measurements still
// reference it.
type CategoryInUseError struct {
	CategoryID uint
	Name       string
	UsageCount int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q is used by %d measurements", e.Name, e.UsageCount)
}
