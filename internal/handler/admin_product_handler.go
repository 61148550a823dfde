package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面usecaseの約束
type AdminCatalog interface {
	ListProducts(ctx context.Context, in usecase.ListProductsInput) model.PageEnvelope
	ExportProductsCSV(ctx context.Context, in usecase.ExportProductsInput) ([]byte, error)
	ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error)
}

// /admin/products と /admin/audit-logs をまとめる
type AdminProductHandler struct {
	uc AdminCatalog
}

// DI
func NewAdminProductHandler(uc AdminCatalog) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録。認証とロール確認のミドルウェアは呼び出し側が渡す。
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guards ...echo.MiddlewareFunc) {
	admin := e.Group("/admin", guards...)

	admin.GET("/products", h.listProducts)
	admin.GET("/products/export", h.exportProducts)
	admin.GET("/audit-logs", h.listAuditLogs)
}

// 管理画面の絞り込み（search/category/status/stock）
func adminFilter(c echo.Context) *usecase.ProductFilter {
	return &usecase.ProductFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Status:   usecase.ParseStatusFilter(c.QueryParam("status")),
		Stock:    usecase.ParseStockFilter(c.QueryParam("stock")),
	}
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	page, limit, bad := pageParams(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: bad})
	}

	out := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		PageSize: limit,
		Filter:   adminFilter(c),
	})
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) exportProducts(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ExportProductsCSV(c.Request().Context(), usecase.ExportProductsInput{
		ActorUserID: adminID,
		Filter:      adminFilter(c),
	})
	if err != nil {
		return writeError(c, err)
	}

	name := fmt.Sprintf("products-%s.csv", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", out)
}

func (h *AdminProductHandler) listAuditLogs(c echo.Context) error {
	var f repo.AuditLogFilter

	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		f.CreatedTo = &t
	}

	var ok bool
	if f.Limit, ok = queryInt(c, "limit", repo.DefaultAuditLogLimit); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
