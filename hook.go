package pagequery

import (
	"context"
)

// EnsureLimits fills page with 1 and perPage with defaultPerPage when they are not set,
// and rejects a perPage above maxPerPage instead of clamping it.
func EnsureLimits[T, F any](defaultPerPage, maxPerPage int) func(next Paginator[T, F]) Paginator[T, F] {
	if defaultPerPage <= 0 {
		panic("defaultPerPage must be greater than 0")
	}
	if maxPerPage < defaultPerPage {
		panic("maxPerPage must be greater than or equal to defaultPerPage")
	}
	return func(next Paginator[T, F]) Paginator[T, F] {
		return PaginatorFunc[T, F](func(ctx context.Context, req *PaginateRequest[F]) (*PaginatedResponse[T], error) {
			if req == nil {
				req = &PaginateRequest[F]{}
			}
			// the caller's request is not mutated
			r := *req
			if r.Page == nil {
				page := 1
				r.Page = &page
			}
			if r.PerPage == nil {
				perPage := defaultPerPage
				r.PerPage = &perPage
			}
			if *r.PerPage > maxPerPage {
				return nil, NewValidationError("perPage", "must be less than or equal to %d, got %d", maxPerPage, *r.PerPage)
			}
			return next.Paginate(ctx, &r)
		})
	}
}
