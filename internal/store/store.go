// Package store owns the shopping list and every mutation on it.
//
// Each mutation reads the whole collection, changes it, writes the whole
// collection back and only then swaps the in-memory copy, so what callers see
// and what is persisted never diverge. A Store is not safe for concurrent use;
// it is meant to be driven from a single UI loop.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/storage"
)

const maxIDAttempts = 8

type Store struct {
	backend storage.Storage
	key     string
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	items  []model.Item
	loaded bool
}

// Option customises a Store.
type Option func(*Store)

// WithKey sets the storage entry holding the collection. Default: storage.DefaultKey.
func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// WithClock replaces time.Now for CreatedAt stamps and export file names.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

// New returns a Store persisting through backend. Nothing is read until first use.
func New(backend storage.Storage, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     storage.DefaultKey,
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Items returns the current collection. Missing or corrupt persisted data
// yields an empty list rather than an error.
func (s *Store) Items() []model.Item {
	s.ensureLoaded()
	return model.Clone(s.items)
}

func (s *Store) ensureLoaded() {
	if s.loaded {
		return
	}
	items, err := s.read()
	if err != nil {
		s.log.Warn("stored list unreadable, starting empty", zap.String("key", s.key), zap.Error(err))
		items = []model.Item{}
	}
	s.items = items
	s.loaded = true
}

func (s *Store) read() ([]model.Item, error) {
	b, err := s.backend.Get(s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug("no stored list yet", zap.String("key", s.key))
			return []model.Item{}, nil
		}
		return nil, &StorageReadError{Key: s.key, Err: err}
	}
	items, err := decodeCollection(b)
	if err != nil {
		return nil, &StorageReadError{Key: s.key, Err: err}
	}
	return items, nil
}

// commit persists next and adopts it as the in-memory collection.
// On a failed write the previous collection stays in place.
func (s *Store) commit(op string, next []model.Item) ([]model.Item, error) {
	b, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("%s: json marshal: %w", op, err)
	}
	if err := s.backend.Set(s.key, b); err != nil {
		return nil, fmt.Errorf("%s: persist: %w", op, err)
	}
	s.items = next
	s.log.Debug("list saved", zap.String("op", op), zap.Int("items", len(next)))
	return model.Clone(next), nil
}

// Add appends a new pending item. Callers trim and reject empty text; the store does not.
func (s *Store) Add(text string) ([]model.Item, error) {
	s.ensureLoaded()
	next := model.Clone(s.items)

	id, err := s.freshID(next)
	if err != nil {
		return nil, err
	}
	next = append(next, model.Item{
		ID:        id,
		Text:      text,
		Completed: false,
		CreatedAt: s.now().UTC().Format(model.TimeLayout),
	})
	return s.commit("add", next)
}

func (s *Store) freshID(items []model.Item) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && model.IndexOf(items, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("add: no unique id after %d attempts", maxIDAttempts)
}

// Update replaces the text of the item with id. An unknown id changes nothing
// but the collection is still written back.
func (s *Store) Update(id, text string) ([]model.Item, error) {
	s.ensureLoaded()
	next := model.Clone(s.items)
	if i := model.IndexOf(next, id); i >= 0 {
		next[i].Text = text
	}
	return s.commit("update", next)
}

// Toggle flips Completed on the item with id. Unknown ids are a no-op.
func (s *Store) Toggle(id string) ([]model.Item, error) {
	s.ensureLoaded()
	next := model.Clone(s.items)
	if i := model.IndexOf(next, id); i >= 0 {
		next[i].Completed = !next[i].Completed
	}
	return s.commit("toggle", next)
}

// Delete drops the item with id. Unknown ids are a no-op.
func (s *Store) Delete(id string) ([]model.Item, error) {
	s.ensureLoaded()
	return s.commit("delete", s.filter(func(it model.Item) bool { return it.ID != id }))
}

// ClearCompleted drops every completed item.
func (s *Store) ClearCompleted() ([]model.Item, error) {
	s.ensureLoaded()
	return s.commit("clear-completed", s.filter(func(it model.Item) bool { return !it.Completed }))
}

// ClearAll empties the list.
func (s *Store) ClearAll() ([]model.Item, error) {
	s.ensureLoaded()
	return s.commit("clear-all", []model.Item{})
}

func (s *Store) filter(keep func(model.Item) bool) []model.Item {
	out := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
