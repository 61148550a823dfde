package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// 公開側ハンドラが使う読み取りの約束。CatalogUsecaseとCachedCatalogが満たす。
type CatalogReader interface {
	ListProducts(ctx context.Context, in ListProductsInput) model.PageEnvelope
	ListCategoryProducts(ctx context.Context, in CategoryListInput) (model.PageEnvelope, error)
	ListSaleProducts(ctx context.Context, in SaleListInput) model.PageEnvelope
	ListFeatured(ctx context.Context, limit int) []model.MappedProduct
	GetProductDetail(ctx context.Context, productID int64) (model.MappedProduct, error)
}

var _ CatalogReader = (*CatalogUsecase)(nil)

// 読み取り結果をタグ付きでキャッシュするデコレータ。
// 0件の一覧はDBエラー時の空レスポンスと区別できないので保存しない。
type CachedCatalog struct {
	next  CatalogReader
	cache repo.TaggedCache
	ttl   time.Duration
	log   *zap.Logger
}

// DI
func NewCachedCatalog(next CatalogReader, cache repo.TaggedCache, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *CachedCatalog) ListProducts(ctx context.Context, in ListProductsInput) model.PageEnvelope {
	key := fmt.Sprintf("catalog:list:%d:%d:%s", in.Page, in.PageSize, filterKey(in.Filter))
	return c.page(ctx, key, func() model.PageEnvelope { return c.next.ListProducts(ctx, in) })
}

func (c *CachedCatalog) ListCategoryProducts(ctx context.Context, in CategoryListInput) (model.PageEnvelope, error) {
	key := fmt.Sprintf("catalog:category:%s:%s:%d:%d", in.Slug, in.Sort, in.Page, in.PageSize)

	var out model.PageEnvelope
	if c.get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.ListCategoryProducts(ctx, in)
	if err != nil {
		return out, err
	}
	if out.Total > 0 {
		c.set(ctx, key, out, repo.TagProducts)
	}
	return out, nil
}

func (c *CachedCatalog) ListSaleProducts(ctx context.Context, in SaleListInput) model.PageEnvelope {
	key := fmt.Sprintf("catalog:sale:%s:%d:%d", in.Sort, in.Page, in.PageSize)
	return c.page(ctx, key, func() model.PageEnvelope { return c.next.ListSaleProducts(ctx, in) })
}

func (c *CachedCatalog) ListFeatured(ctx context.Context, limit int) []model.MappedProduct {
	key := fmt.Sprintf("catalog:featured:%d", limit)

	var out []model.MappedProduct
	if c.get(ctx, key, &out) {
		return out
	}
	out = c.next.ListFeatured(ctx, limit)
	if len(out) > 0 {
		c.set(ctx, key, out, repo.TagProducts, repo.TagFeaturedProducts)
	}
	return out
}

func (c *CachedCatalog) GetProductDetail(ctx context.Context, productID int64) (model.MappedProduct, error) {
	key := fmt.Sprintf("catalog:product:%d", productID)

	var out model.MappedProduct
	if c.get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.GetProductDetail(ctx, productID)
	if err != nil {
		return out, err
	}
	c.set(ctx, key, out, repo.TagProducts, repo.ProductTag(productID))
	return out, nil
}

func (c *CachedCatalog) page(ctx context.Context, key string, load func() model.PageEnvelope) model.PageEnvelope {
	var out model.PageEnvelope
	if c.get(ctx, key, &out) {
		return out
	}
	out = load()
	if out.Total > 0 {
		c.set(ctx, key, out, repo.TagProducts)
	}
	return out
}

// キャッシュの失敗はログだけ残して素通しする
func (c *CachedCatalog) get(ctx context.Context, key string, dst interface{}) bool {
	hit, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		c.log.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (c *CachedCatalog) set(ctx context.Context, key string, v interface{}, tags ...string) {
	if err := c.cache.Set(ctx, key, v, c.ttl, tags...); err != nil {
		c.log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func filterKey(f *ProductFilter) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%q|%q|%s|%s", f.Search, f.Category, f.Status, f.Stock)
}

// 商品の変更イベント
type ProductChangedEvent struct {
	ProductID       int64 `json:"product_id"`
	FeaturedChanged bool  `json:"featured_changed"`
}

// 変更イベントから無効化するタグを決めて消す
type CatalogInvalidator struct {
	cache repo.TaggedCache
	log   *zap.Logger
}

func NewCatalogInvalidator(cache repo.TaggedCache, log *zap.Logger) *CatalogInvalidator {
	return &CatalogInvalidator{cache: cache, log: log}
}

func (i *CatalogInvalidator) HandleProductChanged(ctx context.Context, ev ProductChangedEvent) error {
	tags := []string{repo.TagProducts}
	if ev.ProductID > 0 {
		tags = append(tags, repo.ProductTag(ev.ProductID))
	}
	if ev.FeaturedChanged {
		tags = append(tags, repo.TagFeaturedProducts)
	}

	if err := i.cache.InvalidateTags(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate %v: %w", tags, err)
	}
	i.log.Debug("catalog cache invalidated", zap.Int64("product_id", ev.ProductID), zap.Strings("tags", tags))
	return nil
}
