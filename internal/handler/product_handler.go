package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 数値のクエリパラメータ。空ならdef、数値でなければok=false。
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// page/limit を読む。pageは1未満を1に寄せる。
// 読めなければ400用のメッセージを返す。
func pageParams(c echo.Context) (page, limit int, badParam string) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return 0, 0, "invalid page"
	}
	if page < 1 {
		page = 1
	}
	limit, ok = queryInt(c, "limit", usecase.DefaultPageSize)
	if !ok {
		return 0, 0, "invalid limit"
	}
	return page, limit, ""
}

// 店頭向けの公開API
type ProductHandler struct {
	catalog usecase.CatalogReader
}

// DI
func NewProductHandler(catalog usecase.CatalogReader) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/featured", h.featured)
	e.GET("/products/:id", h.detail)
	e.GET("/categories/:slug/products", h.category)
	e.GET("/sale", h.sale)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, limit, bad := pageParams(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: bad})
	}

	//公開一覧は常にlive
	f := &usecase.ProductFilter{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Status:   usecase.StatusLive,
		Stock:    usecase.StockAll,
	}

	out := h.catalog.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		PageSize: limit,
		Filter:   f,
	})
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) featured(c echo.Context) error {
	limit, ok := queryInt(c, "limit", usecase.DefaultFeatured)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	return c.JSON(http.StatusOK, h.catalog.ListFeatured(c.Request().Context(), limit))
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.catalog.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) category(c echo.Context) error {
	page, limit, bad := pageParams(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: bad})
	}

	out, err := h.catalog.ListCategoryProducts(c.Request().Context(), usecase.CategoryListInput{
		Slug:     c.Param("slug"),
		Page:     page,
		PageSize: limit,
		Sort:     usecase.ParseSortMode(c.QueryParam("sort")),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) sale(c echo.Context) error {
	page, limit, bad := pageParams(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: bad})
	}

	out := h.catalog.ListSaleProducts(c.Request().Context(), usecase.SaleListInput{
		Page:     page,
		PageSize: limit,
		Sort:     usecase.ParseSortMode(c.QueryParam("sort")),
	})
	return c.JSON(http.StatusOK, out)
}

// ログイン中ならuser_idを返す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
