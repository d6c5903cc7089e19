// Package memkv is an in-process storage backend. Nothing survives the process.
package memkv

import (
	"sync"

	"github.com/idilsaglam/shoplist/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailWrites makes every Set fail with this error when non-nil.
	FailWrites error
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Close() error { return nil }
