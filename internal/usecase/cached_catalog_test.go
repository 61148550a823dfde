package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type CatalogReaderMock struct{ mock.Mock }

func (m *CatalogReaderMock) ListProducts(ctx context.Context, in usecase.ListProductsInput) model.PageEnvelope {
	return m.Called(ctx, in).Get(0).(model.PageEnvelope)
}

func (m *CatalogReaderMock) ListCategoryProducts(ctx context.Context, in usecase.CategoryListInput) (model.PageEnvelope, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.PageEnvelope), args.Error(1)
}

func (m *CatalogReaderMock) ListSaleProducts(ctx context.Context, in usecase.SaleListInput) model.PageEnvelope {
	return m.Called(ctx, in).Get(0).(model.PageEnvelope)
}

func (m *CatalogReaderMock) ListFeatured(ctx context.Context, limit int) []model.MappedProduct {
	out, _ := m.Called(ctx, limit).Get(0).([]model.MappedProduct)
	return out
}

func (m *CatalogReaderMock) GetProductDetail(ctx context.Context, productID int64) (model.MappedProduct, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(model.MappedProduct), args.Error(1)
}

const cacheTTL = time.Minute

func onePage() model.PageEnvelope {
	return model.PageEnvelope{
		Products:    []model.MappedProduct{{ID: 1, Name: "item"}},
		Total:       1,
		TotalPages:  1,
		CurrentPage: 1,
	}
}

func TestCachedCatalog_ListProducts_Hit(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	cached := onePage()
	cache.On("Get", mock.Anything, "catalog:list:1:20:-", mock.Anything).
		Return(true, nil, func(dst interface{}) { *dst.(*model.PageEnvelope) = cached })

	c := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop())
	got := c.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, PageSize: 20})

	assert.Equal(t, cached, got)
	next.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedCatalog_ListProducts_MissStoresTaggedPage(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	in := usecase.ListProductsInput{Page: 2, PageSize: 10}
	page := onePage()

	cache.On("Get", mock.Anything, "catalog:list:2:10:-", mock.Anything).Return(false, nil, nil)
	next.On("ListProducts", mock.Anything, in).Return(page)
	cache.On("Set", mock.Anything, "catalog:list:2:10:-", page, cacheTTL, []string{repo.TagProducts}).Return(nil)

	got := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListProducts(context.Background(), in)

	assert.Equal(t, page, got)
	cache.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestCachedCatalog_ListProducts_FilterChangesKey(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	in := usecase.ListProductsInput{Page: 1, PageSize: 20, Filter: &usecase.ProductFilter{Search: "mug", Category: "3", Status: usecase.StatusLive, Stock: usecase.StockAll}}
	key := `catalog:list:1:20:"mug"|"3"|live|all`

	cache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil, nil)
	next.On("ListProducts", mock.Anything, in).Return(onePage())
	cache.On("Set", mock.Anything, key, mock.Anything, cacheTTL, mock.Anything).Return(nil)

	usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListProducts(context.Background(), in)

	cache.AssertExpectations(t)
}

func TestCachedCatalog_EmptyPageIsNotCached(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	in := usecase.SaleListInput{Page: 1, PageSize: 20, Sort: usecase.SortNewest}

	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil, nil)
	next.On("ListSaleProducts", mock.Anything, in).Return(model.EmptyPage())

	got := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListSaleProducts(context.Background(), in)

	assert.Equal(t, int64(0), got.Total)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedCatalog_CacheErrorsFallThrough(t *testing.T) {
	log, logs := newObservedLogger()
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	in := usecase.ListProductsInput{Page: 1, PageSize: 20}

	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("conn refused"), nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("conn refused"))
	next.On("ListProducts", mock.Anything, in).Return(onePage())

	got := usecase.NewCachedCatalog(next, cache, cacheTTL, log).ListProducts(context.Background(), in)

	assert.Equal(t, onePage(), got)
	assert.Equal(t, 1, logs.FilterMessage("catalog cache get failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("catalog cache set failed").Len())
}

func TestCachedCatalog_Category(t *testing.T) {
	t.Run("not found is passed through and not cached", func(t *testing.T) {
		next := new(CatalogReaderMock)
		cache := new(TaggedCacheMock)
		in := usecase.CategoryListInput{Slug: "nope", Page: 1, PageSize: 20, Sort: usecase.SortNewest}

		cache.On("Get", mock.Anything, "catalog:category:nope:newest:1:20", mock.Anything).Return(false, nil, nil)
		next.On("ListCategoryProducts", mock.Anything, in).Return(model.EmptyPage(), usecase.NewHTTPError(404, "category not found"))

		_, err := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListCategoryProducts(context.Background(), in)

		assertErrContains(t, err, "category not found")
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("hit", func(t *testing.T) {
		next := new(CatalogReaderMock)
		cache := new(TaggedCacheMock)
		in := usecase.CategoryListInput{Slug: "mugs", Page: 1, PageSize: 20, Sort: usecase.SortPriceAsc}
		cache.On("Get", mock.Anything, "catalog:category:mugs:price_asc:1:20", mock.Anything).
			Return(true, nil, func(dst interface{}) { *dst.(*model.PageEnvelope) = onePage() })

		got, err := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListCategoryProducts(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, onePage(), got)
		next.AssertNotCalled(t, "ListCategoryProducts", mock.Anything, mock.Anything)
	})
}

func TestCachedCatalog_FeaturedTags(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	rows := []model.MappedProduct{{ID: 3, IsFeatured: true}}

	cache.On("Get", mock.Anything, "catalog:featured:8", mock.Anything).Return(false, nil, nil)
	next.On("ListFeatured", mock.Anything, 8).Return(rows)
	cache.On("Set", mock.Anything, "catalog:featured:8", rows, cacheTTL, []string{repo.TagProducts, repo.TagFeaturedProducts}).Return(nil)

	got := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).ListFeatured(context.Background(), 8)

	assert.Equal(t, rows, got)
	cache.AssertExpectations(t)
}

func TestCachedCatalog_DetailTags(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)
	p := model.MappedProduct{ID: 7, Name: "Lamp"}

	cache.On("Get", mock.Anything, "catalog:product:7", mock.Anything).Return(false, nil, nil)
	next.On("GetProductDetail", mock.Anything, int64(7)).Return(p, nil)
	cache.On("Set", mock.Anything, "catalog:product:7", p, cacheTTL, []string{repo.TagProducts, "product:7"}).Return(nil)

	got, err := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).GetProductDetail(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, p, got)
	cache.AssertExpectations(t)
}

func TestCachedCatalog_DetailErrorNotCached(t *testing.T) {
	next := new(CatalogReaderMock)
	cache := new(TaggedCacheMock)

	cache.On("Get", mock.Anything, "catalog:product:9", mock.Anything).Return(false, nil, nil)
	next.On("GetProductDetail", mock.Anything, int64(9)).Return(model.MappedProduct{}, usecase.NewHTTPError(404, "product not found"))

	_, err := usecase.NewCachedCatalog(next, cache, cacheTTL, zap.NewNop()).GetProductDetail(context.Background(), 9)

	assertErrContains(t, err, "product not found")
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// 無効化
// =====================

func TestCatalogInvalidator_Tags(t *testing.T) {
	cases := []struct {
		name string
		ev   usecase.ProductChangedEvent
		want []string
	}{
		{name: "unknown product", ev: usecase.ProductChangedEvent{}, want: []string{repo.TagProducts}},
		{name: "product", ev: usecase.ProductChangedEvent{ProductID: 5}, want: []string{repo.TagProducts, "product:5"}},
		{name: "featured flag", ev: usecase.ProductChangedEvent{ProductID: 5, FeaturedChanged: true}, want: []string{repo.TagProducts, "product:5", repo.TagFeaturedProducts}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cache := new(TaggedCacheMock)
			cache.On("InvalidateTags", mock.Anything, tc.want).Return(nil)

			err := usecase.NewCatalogInvalidator(cache, zap.NewNop()).HandleProductChanged(context.Background(), tc.ev)

			require.NoError(t, err)
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogInvalidator_Error(t *testing.T) {
	cache := new(TaggedCacheMock)
	cache.On("InvalidateTags", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	err := usecase.NewCatalogInvalidator(cache, zap.NewNop()).HandleProductChanged(context.Background(), usecase.ProductChangedEvent{ProductID: 1})

	assertErrContains(t, err, "redis down")
}
