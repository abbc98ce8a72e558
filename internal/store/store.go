// Package store is the gorm persistence layer shared by every content
// collection. One Store per record type; records embed Base.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const (
	// OrderBySequence sorts by the explicit order field, oldest first on ties.
	OrderBySequence  = "sort_order asc, created_at asc"
	OrderOldestFirst = "created_at asc"
	OrderNewestFirst = "created_at desc"
)

// Base carries the server-assigned fields of every record.
type Base struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:36" validate:"-"`
	CreatedAt time.Time `json:"createdAt" validate:"-"`
	UpdatedAt time.Time `json:"updatedAt" validate:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Base) Meta() *Base {
	return b
}

// Sequence is embedded by records displayed in an admin-chosen order.
// The column is not called "order" since that is reserved in SQL.
type Sequence struct {
	Order int `json:"order" gorm:"column:sort_order;not null;default:0" validate:"min=0"`
}

func (s *Sequence) SetOrder(n int) {
	s.Order = n
}

// Model is satisfied by any pointer to a struct embedding Base.
type Model interface {
	Meta() *Base
}

// Sequenced is satisfied by any pointer to a struct embedding Sequence.
type Sequenced interface {
	SetOrder(n int)
}

type Store[T any] struct {
	db    *gorm.DB
	order string
}

func New[T any](db *gorm.DB, order string) *Store[T] {
	if order == "" {
		order = OrderOldestFirst
	}
	return &Store[T]{db: db, order: order}
}

// List returns every record in display order. An empty table yields an
// empty, non-nil slice.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.db.WithContext(ctx).Order(s.order).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	rec := new(T)
	err := s.db.WithContext(ctx).Where("id = ?", id).First(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *Store[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

func (s *Store[T]) CountWhere(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&n).Error
	return n, err
}

func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store[T]) CreateAll(ctx context.Context, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&recs).Error
}

// Save writes every column of rec. A missing row is inserted.
func (s *Store[T]) Save(ctx context.Context, rec *T) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

// Update sets the given columns on one record.
func (s *Store[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	result := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll empties the collection. Used by the seed command.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error
}
