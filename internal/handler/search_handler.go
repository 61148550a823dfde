package handler

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 検索usecaseの約束
type Searcher interface {
	Search(ctx context.Context, in usecase.SearchInput) model.SearchResult
}

// /search
type SearchHandler struct {
	uc Searcher
}

// DI
func NewSearchHandler(uc Searcher) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// identityはトークンがあればuser_idを入れるミドルウェア（無くても通す）
func (h *SearchHandler) RegisterRoutes(e *echo.Echo, identity echo.MiddlewareFunc) {
	e.GET("/search", h.search, identity)
}

// 結果はsuccess/errorで返すので、レート制限や検索失敗もHTTPとしては200。
func (h *SearchHandler) search(c echo.Context) error {
	limit, ok := queryInt(c, "limit", usecase.DefaultSearchLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	userID, _ := getUserIDFromContext(c)
	res := h.uc.Search(c.Request().Context(), usecase.SearchInput{
		Query:    c.QueryParam("q"),
		Limit:    limit,
		UserID:   userID,
		ClientIP: c.RealIP(),
	})
	return c.JSON(http.StatusOK, res)
}
