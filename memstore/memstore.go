// Package memstore is an in-memory storage collaborator. Count and row fetch run under
// one lock, so they always observe the same snapshot.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/pagequery"
)

type Option func(*options)

type options struct {
	idField string
	unique  []string
}

// WithIDField sets the struct field used as identifier. Defaults to "ID".
func WithIDField(field string) Option {
	return func(o *options) { o.idField = field }
}

// WithUnique declares fields whose non-nil values must be unique.
func WithUnique(fields ...string) Option {
	return func(o *options) { o.unique = append(o.unique, fields...) }
}

type Store[T any] struct {
	mu      sync.RWMutex
	records []T
	opts    options
}

var _ pagequery.Repository[struct{ ID string }] = (*Store[struct{ ID string }])(nil)

func New[T any](opts ...Option) *Store[T] {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("memstore: %s is not a struct", rt))
	}
	o := options{idField: "ID"}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := rt.FieldByName(o.idField); !ok {
		panic(fmt.Sprintf("memstore: %s has no field %s", rt, o.idField))
	}
	return &Store[T]{opts: o}
}

func (s *Store[T]) Execute(ctx context.Context, query *pagequery.Query) (*pagequery.Result[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query.Offset < 0 || query.Limit < 0 {
		return nil, errors.Errorf("memstore: negative offset %d or limit %d", query.Offset, query.Limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, field := range query.Predicate.Fields() {
		if !hasField[T](field) {
			return nil, pagequery.NewValidationError("filter."+field, "unknown field")
		}
	}
	for _, order := range query.OrderBy {
		if !hasField[T](order.Field) {
			return nil, pagequery.NewValidationError("sort", "unknown field %q", order.Field)
		}
	}

	matched := lo.Filter(s.records, func(record T, _ int) bool {
		return query.Predicate.Match(lookup(record))
	})
	totalCount := len(matched)

	slices.SortStableFunc(matched, func(a, b T) int {
		for _, order := range query.OrderBy {
			c := compareField(a, b, order.Field)
			if order.Direction == pagequery.OrderDirectionDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	rows := make([]T, 0)
	if query.Offset < len(matched) && query.Limit > 0 {
		n := min(query.Limit, len(matched)-query.Offset)
		rows = append(rows, matched[query.Offset:query.Offset+n]...)
	}
	return &pagequery.Result[T]{Rows: rows, TotalCount: totalCount}, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.WithStack(pagequery.ErrNotFound)
	}
	record := s.records[i]
	return &record, nil
}

func (s *Store[T]) Create(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id(*record)
	if id == "" {
		return errors.Errorf("memstore: %s must be set", s.opts.idField)
	}
	if s.indexOf(id) >= 0 {
		return errors.Wrapf(pagequery.ErrDuplicate, "%s %q", s.opts.idField, id)
	}
	if err := s.checkUnique(*record, -1); err != nil {
		return err
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *Store[T]) Save(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.id(*record))
	if i < 0 {
		return errors.WithStack(pagequery.ErrNotFound)
	}
	if err := s.checkUnique(*record, i); err != nil {
		return err
	}
	s.records[i] = *record
	return nil
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store[T]) id(record T) string {
	v, _ := lookup(record)(s.opts.idField)
	return v
}

func (s *Store[T]) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(record T) bool {
		return s.id(record) == id
	})
}

func (s *Store[T]) checkUnique(record T, skip int) error {
	get := lookup(record)
	for _, field := range s.opts.unique {
		v, ok := get(field)
		if !ok {
			continue
		}
		for i, existing := range s.records {
			if i == skip {
				continue
			}
			if ev, ok := lookup(existing)(field); ok && ev == v {
				return errors.Wrapf(pagequery.ErrDuplicate, "%s %q", field, v)
			}
		}
	}
	return nil
}

func hasField[T any](field string) bool {
	_, ok := reflect.TypeOf((*T)(nil)).Elem().FieldByName(field)
	return ok
}

func fieldValue(record any, field string) (reflect.Value, bool) {
	v := reflect.ValueOf(record).FieldByName(field)
	if !v.IsValid() {
		return v, false
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}

func lookup(record any) func(field string) (string, bool) {
	return func(field string) (string, bool) {
		v, ok := fieldValue(record, field)
		if !ok {
			return "", false
		}
		if v.Kind() == reflect.String {
			return v.String(), true
		}
		return fmt.Sprint(v.Interface()), true
	}
}

// compareField sorts NULL before any value.
func compareField(a, b any, field string) int {
	va, okA := fieldValue(a, field)
	vb, okB := fieldValue(b, field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	if ta, ok := va.Interface().(time.Time); ok {
		tb, _ := vb.Interface().(time.Time)
		return ta.Compare(tb)
	}

	switch va.Kind() {
	case reflect.String:
		return cmp.Compare(va.String(), vb.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(va.Int(), vb.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp.Compare(va.Uint(), vb.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(va.Float(), vb.Float())
	case reflect.Bool:
		return cmp.Compare(lo.Ternary(va.Bool(), 1, 0), lo.Ternary(vb.Bool(), 1, 0))
	default:
		return cmp.Compare(fmt.Sprint(va.Interface()), fmt.Sprint(vb.Interface()))
	}
}
