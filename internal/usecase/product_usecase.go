package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 現在時刻の約束（isNewの判定に使う）
type Clock interface {
	Now() time.Time
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultFeatured = 8
	MaxFeatured     = 24
)

// 一覧・詳細の読み取りをまとめたusecase
type CatalogUsecase struct {
	store repo.CatalogStore
	tx    repo.CatalogTxManager
	clock Clock
	log   *zap.Logger
}

// DI
func NewCatalogUsecase(store repo.CatalogStore, tx repo.CatalogTxManager, clock Clock, log *zap.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		store: store,
		tx:    tx,
		clock: clock,
		log:   log,
	}
}

// 管理画面・公開一覧の入力DTO
type ListProductsInput struct {
	Page     int
	PageSize int
	Filter   *ProductFilter
}

// 絞り込み付き一覧（作成日時の新しい順）。
// DBエラーでも空の一覧を返し、エラーにはしない。
func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) model.PageEnvelope {
	return u.listPage(ctx, "list_products", BuildProductCondition(in.Filter), SortNewest, in.Page, in.PageSize)
}

// カテゴリページの入力DTO
type CategoryListInput struct {
	Slug     string
	Page     int
	PageSize int
	Sort     SortMode
}

// カテゴリ内の公開商品を並び順指定で返す。カテゴリが無ければ404。
func (u *CatalogUsecase) ListCategoryProducts(ctx context.Context, in CategoryListInput) (model.PageEnvelope, error) {
	cat, err := u.store.FindCategoryBySlug(ctx, in.Slug)
	if errors.Is(err, repo.ErrNotFound) {
		return model.PageEnvelope{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		u.log.Error("category lookup failed", zap.String("slug", in.Slug), zap.Error(err))
		return model.EmptyPage(), nil
	}

	cond := query.And(liveCondition(), query.Eq(model.ColCategoryID, cat.ID))
	return u.listPage(ctx, "list_category_products", cond, in.Sort, in.Page, in.PageSize), nil
}

// セール一覧の入力DTO
type SaleListInput struct {
	Page     int
	PageSize int
	Sort     SortMode
}

// 割引中の公開商品
func (u *CatalogUsecase) ListSaleProducts(ctx context.Context, in SaleListInput) model.PageEnvelope {
	cond := query.And(liveCondition(), query.IsNotNull(model.ColDiscountedPrice))
	return u.listPage(ctx, "list_sale_products", cond, in.Sort, in.Page, in.PageSize)
}

// トップページのおすすめ枠。DBエラーなら空。
func (u *CatalogUsecase) ListFeatured(ctx context.Context, limit int) []model.MappedProduct {
	if limit < 1 {
		limit = DefaultFeatured
	}
	if limit > MaxFeatured {
		limit = MaxFeatured
	}

	cond := query.And(liveCondition(), query.Eq(model.ColIsFeatured, true))
	rows, err := u.store.FindMany(ctx, cond, SortNewest.orderBy(), limit, 0)
	if err != nil {
		u.log.Error("featured listing failed", zap.Int("limit", limit), zap.Error(err))
		return []model.MappedProduct{}
	}
	return model.MapProducts(rows, u.clock.Now())
}

// 公開中の商品詳細。非公開・アーカイブ済みは404。
func (u *CatalogUsecase) GetProductDetail(ctx context.Context, productID int64) (model.MappedProduct, error) {
	if productID <= 0 {
		return model.MappedProduct{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.store.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MappedProduct{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		u.log.Error("product detail failed", zap.Int64("product_id", productID), zap.Error(err))
		return model.MappedProduct{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsLive || p.IsArchived {
		return model.MappedProduct{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return model.MapProduct(p, u.clock.Now()), nil
}

// 管理画面のCSV出力用。上限件数まで新しい順に返す。
func (u *CatalogUsecase) ExportProducts(ctx context.Context, f *ProductFilter, max int) ([]model.MappedProduct, error) {
	rows, err := u.store.FindMany(ctx, BuildProductCondition(f), SortNewest.orderBy(), max, 0)
	if err != nil {
		u.log.Error("product export failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return model.MapProducts(rows, u.clock.Now()), nil
}

// 件数と1ページ分の行を同じスナップショットで取得してレスポンスを組み立てる。
func (u *CatalogUsecase) listPage(ctx context.Context, op string, cond query.Condition, sort SortMode, page, pageSize int) model.PageEnvelope {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	var (
		rows  []model.Product
		total int64
	)
	err := u.tx.WithinReadTx(ctx, func(s repo.CatalogStore) error {
		var err error
		total, err = s.Count(ctx, cond)
		if err != nil {
			return err
		}
		if total == 0 || int64(offset) >= total {
			rows = []model.Product{}
			return nil
		}

		if sort.byEffectivePrice() {
			rows, err = fetchByEffectivePrice(ctx, s, cond, sort.direction(), pageSize, offset)
		} else {
			rows, err = s.FindMany(ctx, cond, sort.orderBy(), pageSize, offset)
		}
		return err
	})
	if err != nil {
		u.log.Error("catalog listing failed",
			zap.String("op", op),
			zap.Int("page", page),
			zap.Int("page_size", pageSize),
			zap.Error(err),
		)
		return model.EmptyPage()
	}

	return model.PageEnvelope{
		Products:    model.MapProducts(rows, u.clock.Now()),
		Total:       total,
		TotalPages:  totalPages(total, pageSize),
		CurrentPage: page,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ceil(total/pageSize)
func totalPages(total int64, pageSize int) int64 {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return (total + size - 1) / size
}
