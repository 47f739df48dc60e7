package handler

import (
	"net/http"

	"marketplace/internal/pricing"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開API（カテゴリ・商品一覧）
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/categories", h.categories)
	e.GET("/products", h.list)
}

func (h *ProductHandler) categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"items": h.uc.Categories()})
}

// GET /products?category=&currency=
func (h *ProductHandler) list(c echo.Context) error {
	currency := pricing.USD
	if v := c.QueryParam("currency"); v != "" {
		cur, err := pricing.ParseCurrency(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid currency"})
		}
		currency = cur
	}

	out, err := h.uc.ListProducts(c.Request().Context(), c.QueryParam("category"), currency)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
