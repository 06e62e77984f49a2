package pagequery_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/theplant/pagequery"
	"github.com/theplant/pagequery/filter"
	"github.com/theplant/pagequery/memstore"
)

type Oil struct {
	ID        string
	Brand     string
	Model     string
	Viscosity string
}

type OilFilter struct {
	ID    *filter.ID
	Brand *filter.String
	Model *filter.String
}

const (
	BrandAsc  pagequery.SortDirective = "brand_ASC"
	BrandDesc pagequery.SortDirective = "brand_DESC"
	ModelAsc  pagequery.SortDirective = "model_ASC"
	ModelDesc pagequery.SortDirective = "model_DESC"
)

var oilSchema = &pagequery.Schema{
	Name: "oil",
	Sorts: map[pagequery.SortDirective]pagequery.Order{
		BrandAsc:  {Field: "Brand", Direction: pagequery.OrderDirectionAsc},
		BrandDesc: {Field: "Brand", Direction: pagequery.OrderDirectionDesc},
		ModelAsc:  {Field: "Model", Direction: pagequery.OrderDirectionAsc},
		ModelDesc: {Field: "Model", Direction: pagequery.OrderDirectionDesc},
	},
	PrimaryOrderBy: []pagequery.Order{{Field: "ID", Direction: pagequery.OrderDirectionAsc}},
}

func newOilStore(t *testing.T, n int) *memstore.Store[Oil] {
	store := memstore.New[Oil]()
	brands := []string{"Shell", "Castrol", "Mobil"}
	for i := 0; i < n; i++ {
		err := store.Create(context.Background(), &Oil{
			ID:        fmt.Sprintf("oil-%03d", i),
			Brand:     brands[i%len(brands)],
			Model:     fmt.Sprintf("%dW-%d", i%4*5, 30+i%3*10),
			Viscosity: "SAE",
		})
		require.NoError(t, err)
	}
	return store
}

func newOilPaginator(executor pagequery.Executor[Oil]) pagequery.Paginator[Oil, OilFilter] {
	return pagequery.New(oilSchema, executor, pagequery.EnsureLimits[Oil, OilFilter](12, 50))
}

func ids(items []Oil) []string {
	return lo.Map(items, func(item Oil, _ int) string { return item.ID })
}

func TestPaginateItemsLength(t *testing.T) {
	ctx := context.Background()
	for _, totalCount := range []int{0, 1, 11, 12, 13, 25, 36} {
		p := newOilPaginator(newOilStore(t, totalCount))
		for _, perPage := range []int{1, 5, 12, 50} {
			for page := 1; page <= 5; page++ {
				rsp, err := p.Paginate(ctx, &pagequery.PaginateRequest[OilFilter]{
					Page:    lo.ToPtr(page),
					PerPage: lo.ToPtr(perPage),
				})
				require.NoError(t, err)

				want := min(perPage, max(0, totalCount-(page-1)*perPage))
				require.Len(t, rsp.Items, want, "totalCount=%d perPage=%d page=%d", totalCount, perPage, page)
				require.Equal(t, totalCount, rsp.TotalCount)
				require.Equal(t, (totalCount+perPage-1)/perPage, rsp.TotalPages)
				require.Equal(t, page, rsp.CurrentPage)
				require.Equal(t, perPage, rsp.PerPage)
			}
		}
	}
}

func TestPaginateThirteenRows(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 13))

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Page:    lo.ToPtr(2),
		PerPage: lo.ToPtr(12),
	})
	require.NoError(t, err)
	require.Len(t, rsp.Items, 1)
	require.Equal(t, 13, rsp.TotalCount)
	require.Equal(t, 2, rsp.TotalPages)
	require.Equal(t, 2, rsp.CurrentPage)
	require.Equal(t, []string{"oil-012"}, ids(rsp.Items))
}

func TestPaginateBeyondLastPage(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 25))

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Page: lo.ToPtr(9),
	})
	require.NoError(t, err)
	require.NotNil(t, rsp.Items)
	require.Empty(t, rsp.Items)
	require.Equal(t, 25, rsp.TotalCount)
	require.Equal(t, 3, rsp.TotalPages)
	require.Equal(t, 9, rsp.CurrentPage)
}

func TestPaginateOffsetOverflow(t *testing.T) {
	testCases := []struct {
		name          string
		page          int
		perPage       int
		expectedPages int
	}{
		{name: "wraps to zero", page: 1<<62 + 1, perPage: 4, expectedPages: 7},
		{name: "wraps negative", page: 1<<62 + 1, perPage: 3, expectedPages: 9},
		{name: "max page", page: math.MaxInt, perPage: 50, expectedPages: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newOilPaginator(newOilStore(t, 25))
			rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
				Page:    lo.ToPtr(tc.page),
				PerPage: lo.ToPtr(tc.perPage),
			})
			require.NoError(t, err)
			require.NotNil(t, rsp.Items)
			require.Empty(t, rsp.Items)
			require.Equal(t, 25, rsp.TotalCount)
			require.Equal(t, tc.expectedPages, rsp.TotalPages)
			require.Equal(t, tc.page, rsp.CurrentPage)
		})
	}

	var got *pagequery.Query
	executor := pagequery.ExecutorFunc[Oil](func(ctx context.Context, query *pagequery.Query) (*pagequery.Result[Oil], error) {
		got = query
		return &pagequery.Result[Oil]{Rows: []Oil{}, TotalCount: 3}, nil
	})
	_, err := newOilPaginator(executor).Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Page:    lo.ToPtr(math.MaxInt),
		PerPage: lo.ToPtr(2),
	})
	require.NoError(t, err)
	require.Equal(t, 0, got.Offset)
	require.Equal(t, 0, got.Limit)
}

func TestPaginateDefaults(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 20))

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{})
	require.NoError(t, err)
	require.Equal(t, 1, rsp.CurrentPage)
	require.Equal(t, 12, rsp.PerPage)
	require.Len(t, rsp.Items, 12)

	rsp, err = p.Paginate(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rsp.Items, 12)
}

func TestPaginateCompositeSort(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 30))

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		PerPage: lo.ToPtr(50),
		Sort:    []pagequery.SortDirective{BrandAsc, ModelDesc},
	})
	require.NoError(t, err)
	require.Len(t, rsp.Items, 30)

	for i := 1; i < len(rsp.Items); i++ {
		prev, cur := rsp.Items[i-1], rsp.Items[i]
		require.LessOrEqual(t, prev.Brand, cur.Brand)
		if prev.Brand == cur.Brand {
			require.GreaterOrEqual(t, prev.Model, cur.Model)
			if prev.Model == cur.Model {
				require.Less(t, prev.ID, cur.ID)
			}
		}
	}
	require.Equal(t, "Castrol", rsp.Items[0].Brand)
}

func TestPaginateDuplicateSortFields(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 9))

	withDup, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Sort: []pagequery.SortDirective{BrandDesc, BrandAsc, ModelAsc},
	})
	require.NoError(t, err)

	withoutDup, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Sort: []pagequery.SortDirective{BrandDesc, ModelAsc},
	})
	require.NoError(t, err)
	require.Equal(t, ids(withoutDup.Items), ids(withDup.Items))
	require.Equal(t, "Shell", withDup.Items[0].Brand)
}

func TestPaginateConjunctiveFilter(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 40))

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		PerPage: lo.ToPtr(50),
		Filter: &OilFilter{
			Brand: &filter.String{Equals: lo.ToPtr("Shell")},
			Model: &filter.String{Contains: lo.ToPtr("5w")},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, rsp.Items)
	require.Equal(t, len(rsp.Items), rsp.TotalCount)
	for _, item := range rsp.Items {
		require.Equal(t, "Shell", item.Brand)
		require.Contains(t, item.Model, "5W")
	}
}

func TestPaginateIdempotent(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 31))
	req := func() *pagequery.PaginateRequest[OilFilter] {
		return &pagequery.PaginateRequest[OilFilter]{
			Page:   lo.ToPtr(2),
			Sort:   []pagequery.SortDirective{BrandAsc},
			Filter: &OilFilter{Model: &filter.String{StartsWith: lo.ToPtr("1")}},
		}
	}

	first, err := p.Paginate(context.Background(), req())
	require.NoError(t, err)
	second, err := p.Paginate(context.Background(), req())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPaginateValidation(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 3))

	tests := []struct {
		name      string
		req       *pagequery.PaginateRequest[OilFilter]
		wantField string
	}{
		{"page zero", &pagequery.PaginateRequest[OilFilter]{Page: lo.ToPtr(0)}, "page"},
		{"negative page", &pagequery.PaginateRequest[OilFilter]{Page: lo.ToPtr(-1)}, "page"},
		{"perPage zero", &pagequery.PaginateRequest[OilFilter]{PerPage: lo.ToPtr(0)}, "perPage"},
		{"perPage above max", &pagequery.PaginateRequest[OilFilter]{PerPage: lo.ToPtr(51)}, "perPage"},
		{"unknown sort", &pagequery.PaginateRequest[OilFilter]{Sort: []pagequery.SortDirective{"price_ASC"}}, "sort"},
		{"empty in", &pagequery.PaginateRequest[OilFilter]{Filter: &OilFilter{ID: &filter.ID{In: []string{}}}}, "filter.ID.In"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsp, err := p.Paginate(context.Background(), tt.req)
			require.Nil(t, rsp)
			var validationErr *pagequery.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			require.Equal(t, tt.wantField, validationErr.Field)
			require.False(t, pagequery.IsStorageError(err))
		})
	}
}

func TestPaginateWithoutEnsureLimits(t *testing.T) {
	p := pagequery.New[Oil, OilFilter](oilSchema, newOilStore(t, 3))
	_, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{})
	require.EqualError(t, err, "invalid pagination: page and perPage must be set")
}

func TestPaginateQueryTranslation(t *testing.T) {
	var got *pagequery.Query
	executor := pagequery.ExecutorFunc[Oil](func(_ context.Context, q *pagequery.Query) (*pagequery.Result[Oil], error) {
		got = q
		return &pagequery.Result[Oil]{TotalCount: 0}, nil
	})
	p := newOilPaginator(executor)

	rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{
		Page:    lo.ToPtr(3),
		PerPage: lo.ToPtr(10),
		Sort:    []pagequery.SortDirective{ModelDesc},
		Filter:  &OilFilter{Brand: &filter.String{Equals: lo.ToPtr("Mobil")}},
	})
	require.NoError(t, err)
	require.Equal(t, 0, rsp.TotalPages)
	require.Equal(t, &pagequery.Query{
		Predicate: filter.Predicate{{Field: "Brand", Operator: filter.OperatorEquals, Value: "Mobil"}},
		OrderBy: []pagequery.Order{
			{Field: "Model", Direction: pagequery.OrderDirectionDesc},
			{Field: "ID", Direction: pagequery.OrderDirectionAsc},
		},
		Offset: 20,
		Limit:  10,
	}, got)
}

func TestPaginateStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name     string
		executor pagequery.ExecutorFunc[Oil]
		wantMsg  string
	}{
		{
			name: "opaque failure",
			executor: func(context.Context, *pagequery.Query) (*pagequery.Result[Oil], error) {
				return nil, boom
			},
			wantMsg: "storage: connection refused",
		},
		{
			name: "too many rows",
			executor: func(_ context.Context, q *pagequery.Query) (*pagequery.Result[Oil], error) {
				return &pagequery.Result[Oil]{Rows: make([]Oil, q.Limit+1), TotalCount: 100}, nil
			},
			wantMsg: "storage: executor returned 3 rows for limit 2",
		},
		{
			name: "negative count",
			executor: func(context.Context, *pagequery.Query) (*pagequery.Result[Oil], error) {
				return &pagequery.Result[Oil]{TotalCount: -1}, nil
			},
			wantMsg: "storage: executor returned negative total count -1",
		},
		{
			name: "no result",
			executor: func(context.Context, *pagequery.Query) (*pagequery.Result[Oil], error) {
				return nil, nil
			},
			wantMsg: "storage: executor returned no result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOilPaginator(tt.executor)
			rsp, err := p.Paginate(context.Background(), &pagequery.PaginateRequest[OilFilter]{PerPage: lo.ToPtr(2)})
			require.Nil(t, rsp)
			require.EqualError(t, err, tt.wantMsg)
			require.True(t, pagequery.IsStorageError(err))
		})
	}

	p := newOilPaginator(pagequery.ExecutorFunc[Oil](func(context.Context, *pagequery.Query) (*pagequery.Result[Oil], error) {
		return nil, boom
	}))
	_, err := p.Paginate(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}

func TestPaginateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newOilPaginator(newOilStore(t, 3))
	_, err := p.Paginate(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, pagequery.IsStorageError(err))
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		totalCount, perPage, wantPages int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
		{100, 1, 100},
	}
	for _, tt := range tests {
		rsp := pagequery.NewPaginatedResponse[Oil](nil, tt.totalCount, 1, tt.perPage)
		require.Equal(t, tt.wantPages, rsp.TotalPages, "totalCount=%d perPage=%d", tt.totalCount, tt.perPage)
		require.NotNil(t, rsp.Items)
	}
}

func TestEnsureLimitsPanics(t *testing.T) {
	require.PanicsWithValue(t, "defaultPerPage must be greater than 0", func() {
		pagequery.EnsureLimits[Oil, OilFilter](0, 10)
	})
	require.PanicsWithValue(t, "maxPerPage must be greater than or equal to defaultPerPage", func() {
		pagequery.EnsureLimits[Oil, OilFilter](12, 10)
	})
	require.PanicsWithValue(t, "executor must be set", func() {
		pagequery.New[Oil, OilFilter](oilSchema, nil)
	})
}

func TestEnsureLimitsDoesNotMutateRequest(t *testing.T) {
	p := newOilPaginator(newOilStore(t, 3))
	req := &pagequery.PaginateRequest[OilFilter]{}
	_, err := p.Paginate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, req.Page)
	require.Nil(t, req.PerPage)
}
