package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/pcforge-backend/pkg/db"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
)

// NewGorm returns a Store backed by database tables. The schema must already
// exist (goose migrations for Postgres, AutoMigrate for SQLite).
func NewGorm(client *db.Client) *Store {
	conn := client.DB()
	return &Store{
		Users:      NewGormCollection[models.User](conn),
		Categories: NewGormCollection[models.Category](conn),
		Products:   NewGormCollection[models.Product](conn),
		CartItems:  NewGormCollection[models.CartItem](conn),
		Builds:     NewGormCollection[models.PCBuild](conn),
		ping:       client.Ping,
		close:      client.Close,
	}
}

type gormCollection[T any, PT Entity[T]] struct {
	conn *gorm.DB
}

// NewGormCollection builds a collection over the table gorm maps T to.
func NewGormCollection[T any, PT Entity[T]](conn *gorm.DB) Collection[T] {
	return &gormCollection[T, PT]{conn: conn}
}

func (c *gormCollection[T, PT]) db(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return c.conn
	}
	return c.conn.WithContext(ctx)
}

func (c *gormCollection[T, PT]) Create(ctx context.Context, record T) (T, error) {
	PT(&record).SetID(0)
	if err := c.db(ctx).Create(PT(&record)).Error; err != nil {
		var zero T
		return zero, fmt.Errorf("create %T: %w", record, err)
	}
	return record, nil
}

func (c *gormCollection[T, PT]) Get(ctx context.Context, id int64) (T, error) {
	var record T
	if err := c.db(ctx).First(PT(&record), id).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("get %T %d: %w", record, id, err)
	}
	return record, nil
}

func (c *gormCollection[T, PT]) List(ctx context.Context, preds ...Predicate[T]) ([]T, error) {
	query := c.db(ctx).Model(PT(new(T)))
	for _, p := range preds {
		if p.Column == "" {
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", p.Column), p.Value)
	}

	var out []T
	if err := query.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %T: %w", *new(T), err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *gormCollection[T, PT]) Update(ctx context.Context, id int64, patch func(*T)) (T, error) {
	var record T
	err := c.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(PT(&record), id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if patch != nil {
			patch(&record)
		}
		PT(&record).SetID(id)
		return tx.Save(PT(&record)).Error
	})
	if err != nil {
		var zero T
		if errors.Is(err, ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("update %T %d: %w", record, id, err)
	}
	return record, nil
}

func (c *gormCollection[T, PT]) Delete(ctx context.Context, id int64) (bool, error) {
	res := c.db(ctx).Delete(PT(new(T)), id)
	if res.Error != nil {
		return false, fmt.Errorf("delete %T %d: %w", *new(T), id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
