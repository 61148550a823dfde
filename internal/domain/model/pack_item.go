package model

// セット商品の構成。PackIDがセット側、ProductIDが中身の商品。
type PackItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	PackID    int64   `gorm:"not null;index" json:"pack_id"`
	ProductID int64   `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"-"`
	Quantity  int64   `gorm:"not null;default:1" json:"quantity"`
}
