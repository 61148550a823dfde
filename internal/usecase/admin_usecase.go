package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// CSV出力の上限件数
const MaxExportRows = 5000

// 管理画面の一覧・CSV出力・監査ログ
type AdminCatalogUsecase struct {
	catalog *CatalogUsecase
	audit   repo.AuditLogRepository
	clock   Clock
	log     *zap.Logger
}

// DI
func NewAdminCatalogUsecase(catalog *CatalogUsecase, audit repo.AuditLogRepository, clock Clock, log *zap.Logger) *AdminCatalogUsecase {
	return &AdminCatalogUsecase{
		catalog: catalog,
		audit:   audit,
		clock:   clock,
		log:     log,
	}
}

// 管理画面の一覧。公開状態に関係なく絞り込み条件どおりに返す。
func (u *AdminCatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) model.PageEnvelope {
	if in.Filter == nil {
		in.Filter = &ProductFilter{Status: StatusAll, Stock: StockAll}
	}
	return u.catalog.ListProducts(ctx, in)
}

type ExportProductsInput struct {
	ActorUserID int64
	Filter      *ProductFilter
}

// 出力した件数と、監査ログに残す内容
type exportDetail struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Stock    string `json:"stock,omitempty"`
	Rows     int    `json:"rows"`
}

// 絞り込み結果をCSVにして返し、監査ログを残す。
// 監査ログの保存に失敗したらCSVは返さない。
func (u *AdminCatalogUsecase) ExportProductsCSV(ctx context.Context, in ExportProductsInput) ([]byte, error) {
	if in.ActorUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rows, err := u.catalog.ExportProducts(ctx, in.Filter, MaxExportRows)
	if err != nil {
		return nil, err
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		u.log.Error("csv marshal failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "export failed")
	}

	detail := exportDetail{Rows: len(rows)}
	if f := in.Filter; f != nil {
		detail.Search = f.Search
		detail.Category = f.Category
		detail.Status = string(f.Status)
		detail.Stock = string(f.Stock)
	}
	b, _ := json.Marshal(detail)

	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  in.ActorUserID,
		Action:       model.AuditActionExportProducts,
		ResourceType: model.AuditResourceProduct,
		DetailJSON:   string(b),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		u.log.Error("audit log create failed", zap.Int64("actor_user_id", in.ActorUserID), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.log.Info("products exported", zap.Int64("actor_user_id", in.ActorUserID), zap.Int("rows", len(rows)))
	return out, nil
}

// 監査ログ一覧（新しい順）
func (u *AdminCatalogUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.audit.List(ctx, f)
	if err != nil {
		u.log.Error("audit log list failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
