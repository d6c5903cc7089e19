package store

import (
	"errors"
	"fmt"
)

// ErrImportValidation matches every *ImportValidationError via errors.Is.
var ErrImportValidation = errors.New("invalid import data")

// ImportValidationError reports why an import was refused.
// Index is the offending element, or -1 when the document as a whole is wrong.
type ImportValidationError struct {
	Index  int
	Reason string
}

func (e *ImportValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid data format: %s", e.Reason)
	}
	return fmt.Sprintf("invalid item format at index %d: %s", e.Index, e.Reason)
}

func (e *ImportValidationError) Is(target error) bool { return target == ErrImportValidation }

// StorageReadError means the persisted collection could not be read or parsed.
// Items recovers from it by starting empty; it only surfaces through the logger.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }
