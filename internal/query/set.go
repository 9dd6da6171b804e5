// Package query holds composable, lazily evaluated filters over the chat
// entities. A query value only records predicates; nothing reaches the store
// until Find, First, Count or Exists is called, and the same value can be run
// any number of times.
package query

import (
	"context"
	"errors"
	"strings"

	chatroom_errors "chat-rooms/pkg/errors"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type scope = func(*gorm.DB) *gorm.DB

// set is the shared, copy-on-write core behind ChatQuery, MessageQuery and
// FileQuery.
type set[T any] struct {
	db           *gorm.DB
	filters      []scope
	preloads     []scope
	order        string
	defaultOrder string
	limit        int
	offset       int
}

func newSet[T any](db *gorm.DB, defaultOrder string) set[T] {
	return set[T]{db: db, defaultOrder: defaultOrder}
}

func (s set[T]) where(fn scope) set[T] {
	next := s
	next.filters = append(append([]scope(nil), s.filters...), fn)
	return next
}

func (s set[T]) preload(fn scope) set[T] {
	next := s
	next.preloads = append(append([]scope(nil), s.preloads...), fn)
	return next
}

func (s set[T]) orderBy(order string) set[T] {
	next := s
	next.order = order
	return next
}

func (s set[T]) withLimit(n int) set[T] {
	next := s
	next.limit = n
	return next
}

func (s set[T]) page(page, limit int) set[T] {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	next := s
	next.limit = limit
	next.offset = (page - 1) * limit
	return next
}

func (s set[T]) base(ctx context.Context) *gorm.DB {
	var model T
	return s.db.WithContext(ctx).Model(&model).Scopes(s.filters...)
}

func (s set[T]) statement(ctx context.Context) *gorm.DB {
	q := s.base(ctx).Scopes(s.preloads...)
	order := s.order
	if order == "" {
		order = s.defaultOrder
	}
	if order != "" {
		q = q.Order(order)
	}
	if s.limit > 0 {
		q = q.Limit(s.limit)
	}
	if s.offset > 0 {
		q = q.Offset(s.offset)
	}
	return q
}

func (s set[T]) find(ctx context.Context) ([]T, error) {
	var out []T
	if err := s.statement(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s set[T]) first(ctx context.Context) (T, error) {
	var out T
	err := s.withLimit(1).statement(ctx).Take(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, chatroom_errors.ErrNotFound
		}
		return out, err
	}
	return out, nil
}

func (s set[T]) count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.base(ctx).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// containsPattern builds a LIKE pattern for a case-insensitive substring match.
func containsPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(term)) + "%"
}
