package store

import (
	"context"
	"sort"
	"sync"

	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
)

// NewMemory returns a Store whose collections live in process memory. Each
// call yields an isolated instance.
func NewMemory() *Store {
	return &Store{
		Users:      NewMemoryCollection[models.User](),
		Categories: NewMemoryCollection[models.Category](),
		Products:   NewMemoryCollection[models.Product](),
		CartItems:  NewMemoryCollection[models.CartItem](),
		Builds:     NewMemoryCollection[models.PCBuild](),
	}
}

// cloner is implemented by models that carry maps, slices or pointers. The
// memory backend copies through it so callers never share backing storage
// with stored rows.
type cloner[T any] interface {
	Clone() T
}

type memoryCollection[T any, PT Entity[T]] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]T
	ids    []int64
}

// NewMemoryCollection builds an empty in-memory collection.
func NewMemoryCollection[T any, PT Entity[T]]() Collection[T] {
	return &memoryCollection[T, PT]{
		nextID: 1,
		rows:   make(map[int64]T),
	}
}

func (c *memoryCollection[T, PT]) Create(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	PT(&record).SetID(id)
	c.rows[id] = copyRecord(record)
	c.ids = append(c.ids, id)
	return copyRecord(record), nil
}

func (c *memoryCollection[T, PT]) Get(ctx context.Context, id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return copyRecord(record), nil
}

func (c *memoryCollection[T, PT]) List(ctx context.Context, preds ...Predicate[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		record := c.rows[id]
		if matchesAll(&record, preds) {
			out = append(out, copyRecord(record))
		}
	}
	return out, nil
}

func (c *memoryCollection[T, PT]) Update(ctx context.Context, id int64, patch func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	record = copyRecord(record)
	if patch != nil {
		patch(&record)
	}
	PT(&record).SetID(id)
	c.rows[id] = copyRecord(record)
	return record, nil
}

func (c *memoryCollection[T, PT]) Delete(ctx context.Context, id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rows[id]; !ok {
		return false, nil
	}
	delete(c.rows, id)
	idx := sort.Search(len(c.ids), func(i int) bool { return c.ids[i] >= id })
	if idx < len(c.ids) && c.ids[idx] == id {
		c.ids = append(c.ids[:idx], c.ids[idx+1:]...)
	}
	return true, nil
}

func copyRecord[T any](record T) T {
	if c, ok := any(record).(cloner[T]); ok {
		return c.Clone()
	}
	return record
}

func matchesAll[T any](record *T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p.Match != nil && !p.Match(record) {
			return false
		}
	}
	return true
}
