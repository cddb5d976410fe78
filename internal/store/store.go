// Package store holds the record collections behind every service: users,
// categories, products, cart items and saved builds. Two backends implement
// the same contract, an in-process map guarded by a mutex and a gorm-backed
// table store for Postgres or SQLite.
package store

import (
	"context"
	"errors"

	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
)

// ErrNotFound is returned by Get and Update when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Entity is implemented by the pointer type of every stored model. Ids are
// assigned by the collection and are never chosen by callers.
type Entity[T any] interface {
	*T
	GetID() int64
	SetID(int64)
}

// Predicate filters List results. Column and Value drive SQL backends, Match
// drives the in-memory backend; both must describe the same condition.
type Predicate[T any] struct {
	Column string
	Value  any
	Match  func(*T) bool
}

// Where builds an equality predicate.
func Where[T any](column string, value any, match func(*T) bool) Predicate[T] {
	return Predicate[T]{Column: column, Value: value, Match: match}
}

// Collection is CRUD over one record type keyed by a positive int64 id.
// Ids start at 1, increase monotonically and are not reused after Delete.
// List returns records in ascending id order.
type Collection[T any] interface {
	Create(ctx context.Context, record T) (T, error)
	Get(ctx context.Context, id int64) (T, error)
	List(ctx context.Context, preds ...Predicate[T]) ([]T, error)
	Update(ctx context.Context, id int64, patch func(*T)) (T, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Store bundles the collections a running service needs.
type Store struct {
	Users      Collection[models.User]
	Categories Collection[models.Category]
	Products   Collection[models.Product]
	CartItems  Collection[models.CartItem]
	Builds     Collection[models.PCBuild]

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backing datasource is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases backend resources.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
