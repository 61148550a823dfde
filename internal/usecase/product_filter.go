package usecase

import (
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
)

// 公開状態の絞り込み
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusLive     StatusFilter = "live"
	StatusPaused   StatusFilter = "paused"
	StatusArchived StatusFilter = "archived"
)

// 在庫の絞り込み
type StockFilter string

const (
	StockAll        StockFilter = "all"
	StockIn         StockFilter = "inStock"
	StockLow        StockFilter = "lowStock"
	StockOutOfStock StockFilter = "outOfStock"
)

// 在庫わずかの上限（この数以下なら lowStock）
const LowStockThreshold int64 = 5

// 一覧の絞り込み条件。未指定の項目は絞り込まない。
type ProductFilter struct {
	Search   string
	Category string // カテゴリID、または "all"
	Status   StatusFilter
	Stock    StockFilter
}

// 絞り込み条件をStoreに渡す条件式に変換する。
// nilなら無条件。アーカイブ済みを除くかどうかは呼び出し側が決める。
func BuildProductCondition(f *ProductFilter) query.Condition {
	if f == nil {
		return query.All()
	}

	conds := make([]query.Condition, 0, 4)

	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, query.Contains(model.ColName, s))
	}

	if c := strings.TrimSpace(f.Category); c != "" && c != "all" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			//存在しえないカテゴリ
			conds = append(conds, query.None())
		} else {
			conds = append(conds, query.Eq(model.ColCategoryID, id))
		}
	}

	switch f.Status {
	case StatusLive:
		conds = append(conds, query.Eq(model.ColIsLive, true), query.Eq(model.ColIsArchived, false))
	case StatusPaused:
		conds = append(conds, query.Eq(model.ColIsLive, false))
	case StatusArchived:
		conds = append(conds, query.Eq(model.ColIsArchived, true))
	}

	switch f.Stock {
	case StockIn:
		conds = append(conds, query.Gt(model.ColStock, LowStockThreshold))
	case StockLow:
		conds = append(conds, query.Gt(model.ColStock, int64(0)), query.Lte(model.ColStock, LowStockThreshold))
	case StockOutOfStock:
		conds = append(conds, query.Eq(model.ColStock, int64(0)))
	}

	return query.And(conds...)
}

// 店頭に出せる商品（公開中かつ未アーカイブ）
func liveCondition() query.Condition {
	return query.And(query.Eq(model.ColIsLive, true), query.Eq(model.ColIsArchived, false))
}

func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(s) {
	case StatusLive, StatusPaused, StatusArchived:
		return StatusFilter(s)
	}
	return StatusAll
}

func ParseStockFilter(s string) StockFilter {
	switch StockFilter(s) {
	case StockIn, StockLow, StockOutOfStock:
		return StockFilter(s)
	}
	return StockAll
}
