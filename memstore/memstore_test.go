package memstore_test

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

type Item struct {
	ID    string
	Code  *string
	Name  string
	Score int
}

func seed(t *testing.T, store *memstore.Store[Item], n int) {
	for i := 1; i <= n; i++ {
		err := store.Create(context.Background(), &Item{
			ID:    fmt.Sprintf("%02d", i),
			Name:  fmt.Sprintf("item-%d", i%3),
			Score: i % 4,
		})
		require.NoError(t, err)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	store := memstore.New[Item]()
	seed(t, store, 10)

	rsp, err := store.Execute(ctx, &pagequery.Query{
		Predicate: filter.Predicate{{Field: "Name", Operator: filter.OperatorEquals, Value: "item-1"}},
		OrderBy: []pagequery.Order{
			{Field: "Score", Direction: pagequery.OrderDirectionDesc},
			{Field: "ID", Direction: pagequery.OrderDirectionAsc},
		},
		Offset: 1,
		Limit:  2,
	})
	require.NoError(t, err)
	// item-1: 01(score 1), 04(0), 07(3), 10(2) -> by score desc: 07, 10, 01, 04
	require.Equal(t, 4, rsp.TotalCount)
	require.Equal(t, []string{"10", "01"}, lo.Map(rsp.Rows, func(it Item, _ int) string { return it.ID }))

	rsp, err = store.Execute(ctx, &pagequery.Query{Offset: 20, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 10, rsp.TotalCount)
	require.NotNil(t, rsp.Rows)
	require.Empty(t, rsp.Rows)

	rsp, err = store.Execute(ctx, &pagequery.Query{Offset: 8, Limit: math.MaxInt})
	require.NoError(t, err)
	require.Len(t, rsp.Rows, 2)

	_, err = store.Execute(ctx, &pagequery.Query{Offset: -4, Limit: 3})
	require.ErrorContains(t, err, "negative offset -4")

	_, err = store.Execute(ctx, &pagequery.Query{
		OrderBy: []pagequery.Order{{Field: "Missing", Direction: pagequery.OrderDirectionAsc}},
		Limit:   1,
	})
	require.True(t, pagequery.IsValidationError(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Execute(cancelled, &pagequery.Query{Limit: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNullsSortFirst(t *testing.T) {
	ctx := context.Background()
	store := memstore.New[Item]()
	require.NoError(t, store.Create(ctx, &Item{ID: "a", Code: lo.ToPtr("x")}))
	require.NoError(t, store.Create(ctx, &Item{ID: "b"}))

	rsp, err := store.Execute(ctx, &pagequery.Query{
		OrderBy: []pagequery.Order{{Field: "Code", Direction: pagequery.OrderDirectionAsc}},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Equal(t, "b", rsp.Rows[0].ID)

	rsp, err = store.Execute(ctx, &pagequery.Query{
		Predicate: filter.Predicate{{Field: "Code", Operator: filter.OperatorContains, Value: ""}},
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, rsp.TotalCount)
}

func TestMutations(t *testing.T) {
	ctx := context.Background()
	store := memstore.New[Item](memstore.WithUnique("Code"))

	require.NoError(t, store.Create(ctx, &Item{ID: "a", Code: lo.ToPtr("c1")}))
	require.NoError(t, store.Create(ctx, &Item{ID: "b"}))
	require.NoError(t, store.Create(ctx, &Item{ID: "c"}))

	err := store.Create(ctx, &Item{ID: "a"})
	require.True(t, errors.Is(err, pagequery.ErrDuplicate))

	err = store.Create(ctx, &Item{ID: "d", Code: lo.ToPtr("c1")})
	require.True(t, errors.Is(err, pagequery.ErrDuplicate))

	err = store.Create(ctx, &Item{})
	require.ErrorContains(t, err, "ID must be set")

	item, err := store.Get(ctx, "b")
	require.NoError(t, err)
	item.Name = "renamed"
	require.NoError(t, store.Save(ctx, item))

	item, err = store.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "renamed", item.Name)

	item.Code = lo.ToPtr("c1")
	err = store.Save(ctx, item)
	require.True(t, errors.Is(err, pagequery.ErrDuplicate))

	_, err = store.Get(ctx, "missing")
	require.True(t, errors.Is(err, pagequery.ErrNotFound))

	err = store.Save(ctx, &Item{ID: "missing"})
	require.True(t, errors.Is(err, pagequery.ErrNotFound))

	require.Equal(t, 3, store.Len())
}
