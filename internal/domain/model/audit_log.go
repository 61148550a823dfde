package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	//商品一覧をCSVで出力した操作。
	AuditActionExportProducts AuditAction = "EXPORT_PRODUCTS"
)

// 何に対する操作か
type AuditResourceType string

const (
	//商品に対する操作。
	AuditResourceProduct AuditResourceType = "product"

	//カテゴリに対する操作。
	AuditResourceCategory AuditResourceType = "category"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」行ったかを残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（product / category）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。一覧全体への操作なら0。
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//操作の詳細（出力条件と件数など）をJSON文字列で保存する。
	DetailJSON string `gorm:"type:text" json:"detail_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
