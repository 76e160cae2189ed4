// Package repository provides a generic gorm-backed store used by simple CRUD services.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"workshop-backend/pkg/db/option"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns (nil, nil) when no row matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, id string, resource any) error
	Delete(ctx context.Context, id string) error
	BatchCreate(ctx context.Context, resources []*T) error
	BatchUpdate(ctx context.Context, resources []*T) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}

type store[T any] struct {
	db         *gorm.DB
	primaryKey string
}

// ProvideStore builds a Repository keyed by the "id" column.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db, primaryKey: "id"}
}

// ProvideStoreWithKey is ProvideStore for tables whose primary key column is not "id".
func ProvideStoreWithKey[T any](db *gorm.DB, primaryKey string) Repository[T] {
	return &store[T]{db: db, primaryKey: primaryKey}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx, primaryKey: s.primaryKey}
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	tx := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		tx = tx.Where(query)
	}
	if err := option.Apply(tx, opts...).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	tx := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		tx = tx.Where(query)
	}
	if err := option.Apply(tx, opts...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}

// Update applies a partial update; zero values in a struct are skipped, maps are applied as is.
func (s *store[T]) Update(ctx context.Context, id string, resource any) error {
	res := s.db.WithContext(ctx).Model(new(T)).Where(s.whereKey(), id).Updates(resource)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when nothing changed
	var n int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(s.whereKey(), id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *store[T]) whereKey() string {
	return s.db.Statement.Quote(s.primaryKey) + " = ?"
}

func (s *store[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where(s.whereKey(), id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(resources, 100).Error
}

func (s *store[T]) BatchUpdate(ctx context.Context, resources []*T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range resources {
			if err := tx.Save(r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var total int64
	tx := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		tx = tx.Where(query)
	}
	if err := option.Apply(tx, opts...).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
