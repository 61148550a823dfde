package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 新着扱いにする期間
const NewArrivalWindow = 7 * 24 * time.Hour

type Product struct {
	ID              int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string              `gorm:"type:varchar(255);not null" json:"name"`
	Description     string              `gorm:"type:text" json:"description"`
	OriginalPrice   decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"original_price"`
	DiscountedPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"discounted_price"`
	Stock           int64               `gorm:"not null;default:0" json:"stock"`
	IsLive          bool                `gorm:"not null;default:false;index" json:"is_live"`
	IsArchived      bool                `gorm:"not null;default:false;index" json:"is_archived"`
	IsFeatured      bool                `gorm:"not null;default:false;index" json:"is_featured"`
	CategoryID      int64               `gorm:"not null;index" json:"category_id"`
	Category        Category            `gorm:"foreignKey:CategoryID" json:"category"`
	Images          []ProductImage      `gorm:"foreignKey:ProductID" json:"images"`
	PackItems       []PackItem          `gorm:"foreignKey:PackID" json:"pack_items"`
	CreatedAt       time.Time           `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`
}

// 割引価格があればそれを、なければ元の価格を返す。
// 割引価格が元価格より高くても割引価格を優先する。
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.OriginalPrice
}

// 作成から7日以内なら新着
func (p Product) IsNewAt(now time.Time) bool {
	return now.Sub(p.CreatedAt) < NewArrivalWindow
}
