package usecase

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"
)

// 並び順
type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortPopular   SortMode = "popular"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// 不明な値はnewest扱い
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPopular, SortPriceAsc, SortPriceDesc:
		return SortMode(s)
	}
	return SortNewest
}

func (s SortMode) byEffectivePrice() bool {
	return s == SortPriceAsc || s == SortPriceDesc
}

func (s SortMode) direction() query.Direction {
	if s == SortPriceDesc {
		return query.Desc
	}
	return query.Asc
}

// カラムだけで並べられるモードのORDER BY
func (s SortMode) orderBy() []query.Order {
	switch s {
	case SortPopular:
		return []query.Order{
			{Expr: model.ColIsFeatured, Dir: query.Desc},
			{Expr: model.ColCreatedAt, Dir: query.Desc},
			{Expr: model.ColID, Dir: query.Desc},
		}
	case SortPriceAsc, SortPriceDesc:
		return effectivePriceOrder(s.direction())
	}
	return []query.Order{
		{Expr: model.ColCreatedAt, Dir: query.Desc},
		{Expr: model.ColID, Dir: query.Desc},
	}
}

// 同じ価格ならID昇順。向きに関係なく固定してページングを安定させる。
func effectivePriceOrder(dir query.Direction) []query.Order {
	return []query.Order{
		{Expr: repo.EffectivePriceExpr, Dir: dir},
		{Expr: model.ColID, Dir: query.Asc},
	}
}

// 1段目で並べたIDを取り、2段目で行を取ってIDの順に並べ直す。
// 途中で消えた行は黙って落とすので、ページサイズより少なくなることがある。
func fetchByEffectivePrice(ctx context.Context, s repo.CatalogStore, cond query.Condition, dir query.Direction, limit, offset int) ([]model.Product, error) {
	ids, err := s.OrderedIDs(ctx, cond, effectivePriceOrder(dir), limit, offset)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := s.FindManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, rows), nil
}

func orderByIDs(ids []int64, rows []model.Product) []model.Product {
	byID := make(map[int64]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, p)
		//同じIDが2回来ても1回だけ
		delete(byID, id)
	}
	return out
}
