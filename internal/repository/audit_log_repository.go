package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

// 監査ログの絞り込み条件。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順に返す。
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
