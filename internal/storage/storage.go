// Package storage defines the key-value contract the item store persists through.
// Each key holds one opaque value; the store keeps its whole collection under a single key.
package storage

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// DefaultKey is the entry the shopping list lives under.
const DefaultKey = "shopping-list-data"

// Storage is a minimal key-value medium.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateKey rejects keys that could not double as a file name.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
