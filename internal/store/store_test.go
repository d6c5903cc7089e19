package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/storage"
	"github.com/idilsaglam/shoplist/internal/storage/filekv"
	"github.com/idilsaglam/shoplist/internal/storage/memkv"
)

var fixedNow = time.Date(2024, 3, 9, 14, 30, 5, 123_000_000, time.UTC)

func newTestStore(t *testing.T, backend storage.Storage) *Store {
	t.Helper()
	n := 0
	return New(backend,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
}

// persisted decodes what the backend currently holds.
func persisted(t *testing.T, backend storage.Storage) []model.Item {
	t.Helper()
	b, err := backend.Get(storage.DefaultKey)
	require.NoError(t, err)
	var items []model.Item
	require.NoError(t, json.Unmarshal(b, &items))
	return items
}

func TestItemsEmptyWhenNothingStored(t *testing.T) {
	s := newTestStore(t, memkv.New())
	items := s.Items()
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestItemsRecoverFromCorruptStorage(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{{{`,
		"not an array":  `{"a":1}`,
		"missing field": `[{"id":"1","text":"X","completed":false}]`,
		"wrong type":    `[{"id":1,"text":"X","completed":false,"createdAt":"t"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := memkv.New()
			require.NoError(t, kv.Set(storage.DefaultKey, []byte(raw)))

			s := newTestStore(t, kv)
			assert.Empty(t, s.Items())

			// the store remains usable and overwrites the corrupt entry
			items, err := s.Add("Milk")
			require.NoError(t, err)
			assert.Len(t, items, 1)
			assert.Equal(t, items, persisted(t, kv))
		})
	}
}

func TestItemsReadsExistingList(t *testing.T) {
	kv := memkv.New()
	require.NoError(t, kv.Set(storage.DefaultKey,
		[]byte(`[{"id":"1699999999999","text":"Bread","completed":true,"createdAt":"2023-11-14T22:13:19.999Z"}]`)))

	s := newTestStore(t, kv)
	assert.Equal(t, []model.Item{{
		ID: "1699999999999", Text: "Bread", Completed: true, CreatedAt: "2023-11-14T22:13:19.999Z",
	}}, s.Items())
}

func TestAddAppendsPendingItem(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)

	items, err := s.Add("Milk")
	require.NoError(t, err)
	assert.Equal(t, []model.Item{{
		ID: "id-1", Text: "Milk", Completed: false, CreatedAt: "2024-03-09T14:30:05.123Z",
	}}, items)
	assert.Equal(t, items, persisted(t, kv))
}

func TestAddIDsPairwiseDistinct(t *testing.T) {
	s := New(memkv.New(), WithLogger(zaptest.NewLogger(t)))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		items, err := s.Add(fmt.Sprintf("item %d", i))
		require.NoError(t, err)
		id := items[len(items)-1].ID
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, s.Items(), 200)
}

func TestAddRetriesCollidingIDs(t *testing.T) {
	ids := []string{"a", "a", "", "b"}
	s := New(memkv.New(), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	_, err := s.Add("first")
	require.NoError(t, err)
	items, err := s.Add("second")
	require.NoError(t, err)
	assert.Equal(t, "b", items[1].ID)
}

func TestAddFailsWhenGeneratorNeverUnique(t *testing.T) {
	s := New(memkv.New(), WithIDGenerator(func() string { return "same" }))
	_, err := s.Add("one")
	require.NoError(t, err)
	_, err = s.Add("two")
	assert.Error(t, err)
	assert.Len(t, s.Items(), 1)
}

func TestAddDoesNotEnforceNonEmptyText(t *testing.T) {
	s := newTestStore(t, memkv.New())
	items, err := s.Add("")
	require.NoError(t, err)
	assert.Equal(t, "", items[0].Text)
}

func TestUpdate(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)
	_, _ = s.Add("Milk")
	_, _ = s.Add("Eggs")

	items, err := s.Update("id-1", "Oat milk")
	require.NoError(t, err)
	assert.Equal(t, "Oat milk", items[0].Text)
	assert.Equal(t, "id-1", items[0].ID, "id is immutable")
	assert.Equal(t, "Eggs", items[1].Text)
	assert.Equal(t, items, persisted(t, kv))
}

func TestMissingIDIsNoOp(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)
	before, _ := s.Add("Milk")

	for name, op := range map[string]func() ([]model.Item, error){
		"update": func() ([]model.Item, error) { return s.Update("nope", "X") },
		"toggle": func() ([]model.Item, error) { return s.Toggle("nope") },
		"delete": func() ([]model.Item, error) { return s.Delete("nope") },
	} {
		items, err := op()
		require.NoError(t, err, name)
		assert.Empty(t, cmp.Diff(before, items), name)
		assert.Equal(t, before, persisted(t, kv), name)
	}
}

func TestDoubleToggleRestores(t *testing.T) {
	s := newTestStore(t, memkv.New())
	_, _ = s.Add("Milk")

	items, err := s.Toggle("id-1")
	require.NoError(t, err)
	assert.True(t, items[0].Completed)

	items, err = s.Toggle("id-1")
	require.NoError(t, err)
	assert.False(t, items[0].Completed)
}

func TestDeleteTwiceSecondIsNoOp(t *testing.T) {
	s := newTestStore(t, memkv.New())
	_, _ = s.Add("Milk")
	_, _ = s.Add("Eggs")
	_, _ = s.Add("Bread")

	first, err := s.Delete("id-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Bread"}, texts(first))

	second, err := s.Delete("id-2")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestShoppingScenario(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)

	items, err := s.Add("Milk")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Text)
	assert.False(t, items[0].Completed)

	items, err = s.Add("Eggs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Eggs"}, texts(items))

	milk := items[0].ID
	items, err = s.Toggle(milk)
	require.NoError(t, err)
	assert.True(t, items[0].Completed)
	assert.False(t, items[1].Completed)

	items, err = s.ClearCompleted()
	require.NoError(t, err)
	assert.Equal(t, []string{"Eggs"}, texts(items))
	assert.Equal(t, items, persisted(t, kv))
}

func TestClearAll(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)
	_, _ = s.Add("Milk")

	items, err := s.ClearAll()
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	b, err := kv.Get(storage.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestFailedWriteKeepsPreviousState(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(t, kv)
	before, _ := s.Add("Milk")

	boom := errors.New("quota exceeded")
	kv.FailWrites = boom

	_, err := s.Add("Eggs")
	assert.ErrorIs(t, err, boom)
	_, err = s.Toggle(before[0].ID)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, before, s.Items())
	assert.Equal(t, before, persisted(t, kv))
}

func TestReturnedSliceDoesNotAliasStore(t *testing.T) {
	s := newTestStore(t, memkv.New())
	items, _ := s.Add("Milk")
	items[0].Text = "tampered"
	assert.Equal(t, "Milk", s.Items()[0].Text)
}

func TestStatePersistsAcrossStores(t *testing.T) {
	kv, err := filekv.New(t.TempDir())
	require.NoError(t, err)

	s1 := newTestStore(t, kv)
	_, _ = s1.Add("Milk")
	_, _ = s1.Toggle("id-1")

	s2 := New(kv, WithLogger(zaptest.NewLogger(t)))
	assert.Empty(t, cmp.Diff(s1.Items(), s2.Items()))
}

func TestCustomKey(t *testing.T) {
	kv := memkv.New()
	s := New(kv, WithKey("groceries"))
	_, err := s.Add("Milk")
	require.NoError(t, err)

	_, err = kv.Get("groceries")
	assert.NoError(t, err)
	_, err = kv.Get(storage.DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func texts(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
