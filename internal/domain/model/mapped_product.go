package model

import "time"

// APIで返す商品。金額はfloat64、時刻はISO-8601文字列に変換済み。
type MappedProduct struct {
	ID              int64            `json:"id" csv:"id"`
	Name            string           `json:"name" csv:"name"`
	Description     string           `json:"description" csv:"-"`
	OriginalPrice   float64          `json:"original_price" csv:"original_price"`
	DiscountedPrice *float64         `json:"discounted_price" csv:"discounted_price"`
	Price           float64          `json:"price" csv:"price"`
	Stock           int64            `json:"stock" csv:"stock"`
	IsLive          bool             `json:"is_live" csv:"is_live"`
	IsArchived      bool             `json:"is_archived" csv:"is_archived"`
	IsFeatured      bool             `json:"is_featured" csv:"is_featured"`
	IsNew           bool             `json:"is_new" csv:"is_new"`
	CategoryID      int64            `json:"category_id" csv:"category_id"`
	Category        *MappedCategory  `json:"category,omitempty" csv:"-"`
	Images          []string         `json:"images" csv:"-"`
	PackItems       []MappedPackItem `json:"pack_items" csv:"-"`
	CreatedAt       string           `json:"created_at" csv:"created_at"`
	UpdatedAt       string           `json:"updated_at" csv:"updated_at"`
}

type MappedCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type MappedPackItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// 一覧系APIの共通レスポンス
type PageEnvelope struct {
	Products    []MappedProduct `json:"products"`
	Total       int64           `json:"total"`
	TotalPages  int64           `json:"total_pages"`
	CurrentPage int             `json:"current_page"`
}

// DBエラー時に返す空の一覧
func EmptyPage() PageEnvelope {
	return PageEnvelope{
		Products:    []MappedProduct{},
		Total:       0,
		TotalPages:  0,
		CurrentPage: 1,
	}
}

// 検索結果。0件はSuccess=trueでDataが空。
type SearchResult struct {
	Success bool            `json:"success"`
	Data    []MappedProduct `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// DBの行をAPI用に変換する。isNewはレスポンス作成時点で判定する。
func MapProduct(p Product, now time.Time) MappedProduct {
	out := MappedProduct{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		OriginalPrice: p.OriginalPrice.InexactFloat64(),
		Price:         p.EffectivePrice().InexactFloat64(),
		Stock:         p.Stock,
		IsLive:        p.IsLive,
		IsArchived:    p.IsArchived,
		IsFeatured:    p.IsFeatured,
		IsNew:         p.IsNewAt(now),
		CategoryID:    p.CategoryID,
		Images:        make([]string, 0, len(p.Images)),
		PackItems:     make([]MappedPackItem, 0, len(p.PackItems)),
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.DiscountedPrice.Valid {
		v := p.DiscountedPrice.Decimal.InexactFloat64()
		out.DiscountedPrice = &v
	}
	if p.Category.ID != 0 {
		out.Category = &MappedCategory{
			ID:   p.Category.ID,
			Name: p.Category.Name,
			Slug: p.Category.Slug,
		}
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, img.URL)
	}
	for _, it := range p.PackItems {
		out.PackItems = append(out.PackItems, MappedPackItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func MapProducts(ps []Product, now time.Time) []MappedProduct {
	out := make([]MappedProduct, 0, len(ps))
	for _, p := range ps {
		out = append(out, MapProduct(p, now))
	}
	return out
}
