package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSearchFixture() (*MockIndex, *MockProductRepository, *SearchService) {
	index := new(MockIndex)
	products := new(MockProductRepository)
	svc := NewSearchService(index, products, SearchServiceConfig{DefaultLimit: 10, MaxLimit: 50}, zap.NewNop())
	return index, products, svc
}

func idsFilter(ids ...int64) any {
	return mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return assert.ObjectsAreEqual(ids, f.IDs)
	})
}

func TestSearchService_EmptyQuery(t *testing.T) {
	index, _, svc := newSearchFixture()

	_, err := svc.Search(context.Background(), SearchRequest{Query: " \t "})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	index.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchService_HydratesInRankOrderAndDropsStale(t *testing.T) {
	ctx := context.Background()
	index, products, svc := newSearchFixture()
	index.On("Search", ctx, search.Query{Text: "sunscreen", Limit: 10}).Return(search.Result{
		Hits: []search.Hit{
			{ProductID: 3, Score: 2.5},
			{ProductID: 8, Score: 1.9},
			{ProductID: 1, Score: 1.2},
		},
		Total: 3,
	}, nil)
	// product 8 was deleted after it was indexed
	products.On("FindAll", ctx, idsFilter(3, 8, 1)).
		Return([]catalog.Product{*storedProduct(1, "B0SUN00001"), *storedProduct(3, "B0SUN00003")}, int64(2), nil)

	resp, err := svc.Search(ctx, SearchRequest{Query: "sunscreen"})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(3), resp.Items[0].ID)
	assert.Equal(t, 2.5, resp.Items[0].Score)
	assert.Equal(t, int64(1), resp.Items[1].ID)
	assert.Equal(t, 10, resp.Limit)
}

func TestSearchService_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	index, _, svc := newSearchFixture()
	index.On("Search", ctx, search.Query{Text: "tent", Limit: 50, Offset: 5}).Return(search.Result{Hits: []search.Hit{}}, nil)

	resp, err := svc.Search(ctx, SearchRequest{Query: "tent", Limit: 500, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 50, resp.Limit)
}

func TestSearchService_FiltersApplyAfterRanking(t *testing.T) {
	ctx := context.Background()
	index, products, svc := newSearchFixture()
	index.On("Search", ctx, search.Query{Text: "tent"}).Return(search.Result{
		Hits: []search.Hit{
			{ProductID: 4, Score: 3},
			{ProductID: 2, Score: 2},
			{ProductID: 9, Score: 1},
		},
		Total: 3,
	}, nil)
	bestSeller := true
	products.On("FindAll", ctx, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return f.BestSeller != nil && *f.BestSeller && len(f.IDs) == 3
	})).Return([]catalog.Product{*storedProduct(9, "B0TENT0009"), *storedProduct(4, "B0TENT0004")}, int64(2), nil)

	resp, err := svc.Search(ctx, SearchRequest{
		Query:                  "tent",
		Limit:                  1,
		Offset:                 1,
		ProductAttributeFilter: ProductAttributeFilter{BestSeller: &bestSeller},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(9), resp.Items[0].ID)
}

func TestSearchService_StoreError(t *testing.T) {
	ctx := context.Background()
	index, products, svc := newSearchFixture()
	index.On("Search", ctx, mock.Anything).Return(search.Result{Hits: []search.Hit{{ProductID: 1}}, Total: 1}, nil)
	products.On("FindAll", ctx, mock.Anything).Return(nil, int64(0), shared.ErrTimeout)

	_, err := svc.Search(ctx, SearchRequest{Query: "tent"})
	assert.True(t, shared.IsRetryable(err))
}
