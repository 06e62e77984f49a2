package pagequery

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/theplant/pagequery/filter"
	"github.com/theplant/pagequery/internal/hook"
)

type PaginateRequest[F any] struct {
	Page    *int            `json:"page"`
	PerPage *int            `json:"perPage"`
	Sort    []SortDirective `json:"sort"`
	Filter  *F              `json:"filter"`
}

type PaginatedResponse[T any] struct {
	Items       []T `json:"items"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
}

// Query is the backend-agnostic description handed to an Executor.
// A zero Limit asks for the total count only. Offset and Limit are never negative.
type Query struct {
	Predicate filter.Predicate
	OrderBy   []Order
	Offset    int
	Limit     int
}

// Result must hold rows and a total count computed under the same predicate.
type Result[T any] struct {
	Rows       []T
	TotalCount int
}

// Executor is the storage collaborator. It must apply Query.Predicate identically to
// the count and the row fetch, apply Query.OrderBy to rows only, and return at most
// Query.Limit rows.
type Executor[T any] interface {
	Execute(ctx context.Context, query *Query) (*Result[T], error)
}

type ExecutorFunc[T any] func(ctx context.Context, query *Query) (*Result[T], error)

func (f ExecutorFunc[T]) Execute(ctx context.Context, query *Query) (*Result[T], error) {
	return f(ctx, query)
}

// NewPaginatedResponse assembles a page envelope. It neither validates nor reorders rows.
func NewPaginatedResponse[T any](rows []T, totalCount, page, perPage int) *PaginatedResponse[T] {
	if rows == nil {
		rows = make([]T, 0)
	}
	totalPages := 0
	if totalCount > 0 && perPage > 0 {
		totalPages = (totalCount + perPage - 1) / perPage
	}
	return &PaginatedResponse[T]{
		Items:       rows,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
	}
}

func paginate[T, F any](ctx context.Context, req *PaginateRequest[F], schema *Schema, executor Executor[T]) (*PaginatedResponse[T], error) {
	if req.Page == nil || req.PerPage == nil {
		return nil, NewValidationError("pagination", "page and perPage must be set")
	}
	page, perPage := *req.Page, *req.PerPage
	if page < 1 {
		return nil, NewValidationError("page", "must be a positive integer, got %d", page)
	}
	if perPage < 1 {
		return nil, NewValidationError("perPage", "must be a positive integer, got %d", perPage)
	}

	orderBy, err := schema.OrderBy(req.Sort)
	if err != nil {
		return nil, err
	}

	predicate, err := filter.Compile(req.Filter)
	if err != nil {
		var invalidErr *filter.InvalidError
		if errors.As(err, &invalidErr) {
			return nil, NewValidationError("filter."+invalidErr.Field, "%s", invalidErr.Message)
		}
		return nil, NewValidationError("filter", "%s", err.Error())
	}

	query := &Query{
		Predicate: predicate,
		OrderBy:   orderBy,
		Limit:     perPage,
	}
	if page-1 > math.MaxInt/perPage {
		// the offset does not fit in an int, so the page is past the end; count only
		query.Limit = 0
	} else {
		query.Offset = (page - 1) * perPage
	}
	rsp, err := executor.Execute(ctx, query)
	if err != nil {
		return nil, NewStorageError(err)
	}
	if rsp == nil {
		return nil, NewStorageError(errors.New("executor returned no result"))
	}
	if len(rsp.Rows) > query.Limit {
		return nil, NewStorageError(errors.Errorf("executor returned %d rows for limit %d", len(rsp.Rows), query.Limit))
	}
	if rsp.TotalCount < 0 {
		return nil, NewStorageError(errors.Errorf("executor returned negative total count %d", rsp.TotalCount))
	}

	return NewPaginatedResponse(rsp.Rows, rsp.TotalCount, page, perPage), nil
}

type Paginator[T, F any] interface {
	Paginate(ctx context.Context, req *PaginateRequest[F]) (*PaginatedResponse[T], error)
}

type PaginatorFunc[T, F any] func(ctx context.Context, req *PaginateRequest[F]) (*PaginatedResponse[T], error)

func (f PaginatorFunc[T, F]) Paginate(ctx context.Context, req *PaginateRequest[F]) (*PaginatedResponse[T], error) {
	return f(ctx, req)
}

func New[T, F any](schema *Schema, executor Executor[T], hooks ...func(next Paginator[T, F]) Paginator[T, F]) Paginator[T, F] {
	if schema == nil {
		panic("schema must be set")
	}
	if executor == nil {
		panic("executor must be set")
	}

	var p Paginator[T, F] = PaginatorFunc[T, F](func(ctx context.Context, req *PaginateRequest[F]) (*PaginatedResponse[T], error) {
		if req == nil {
			req = &PaginateRequest[F]{}
		}
		return paginate(ctx, req, schema, executor)
	})

	hook := hook.Chain(hooks...)
	if hook != nil {
		p = hook(p)
	}
	return p
}
