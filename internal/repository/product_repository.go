package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
)

var ErrNotFound = errors.New("not found")

// 割引価格があれば割引価格、なければ元の価格で並べるための式
const EffectivePriceExpr = "COALESCE(" + model.ColDiscountedPrice + ", " + model.ColOriginalPrice + ")"

// 商品の読み取りだけを約束。作成・更新は管理画面側の責務。
type CatalogStore interface {
	// 条件に合う件数
	Count(ctx context.Context, cond query.Condition) (int64, error)

	// 条件に合う行を、並び順・件数・開始位置を指定して取得
	FindMany(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]model.Product, error)

	// IDで行をまとめて取得。返る順番は保証しない。
	FindManyByID(ctx context.Context, ids []int64) ([]model.Product, error)

	// 式で並べたIDだけを取得（effective priceソートの1段目）
	OrderedIDs(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]int64, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindCategoryBySlug(ctx context.Context, slug string) (model.Category, error)
}
