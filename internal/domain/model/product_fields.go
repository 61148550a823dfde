package model

// productsテーブルと、検索で結合するcategoriesテーブルのカラム名
const (
	ProductTable  = "products"
	CategoryTable = "categories"

	ColID              = "products.id"
	ColName            = "products.name"
	ColDescription     = "products.description"
	ColOriginalPrice   = "products.original_price"
	ColDiscountedPrice = "products.discounted_price"
	ColStock           = "products.stock"
	ColIsLive          = "products.is_live"
	ColIsArchived      = "products.is_archived"
	ColIsFeatured      = "products.is_featured"
	ColCategoryID      = "products.category_id"
	ColCreatedAt       = "products.created_at"

	ColCategoryName = "categories.name"
	ColCategorySlug = "categories.slug"
)

// Valueはquery.Recordの実装。インメモリで条件を評価するときに使う。
func (p Product) Value(field string) (interface{}, bool) {
	switch field {
	case ColID:
		return p.ID, true
	case ColName:
		return p.Name, true
	case ColDescription:
		return p.Description, true
	case ColOriginalPrice:
		return p.OriginalPrice, true
	case ColDiscountedPrice:
		if !p.DiscountedPrice.Valid {
			return nil, true
		}
		return p.DiscountedPrice.Decimal, true
	case ColStock:
		return p.Stock, true
	case ColIsLive:
		return p.IsLive, true
	case ColIsArchived:
		return p.IsArchived, true
	case ColIsFeatured:
		return p.IsFeatured, true
	case ColCategoryID:
		return p.CategoryID, true
	case ColCreatedAt:
		return p.CreatedAt, true
	case ColCategoryName:
		return p.Category.Name, true
	case ColCategorySlug:
		return p.Category.Slug, true
	}
	return nil, false
}
