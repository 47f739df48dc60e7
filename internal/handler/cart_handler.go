package handler

import (
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"product_id"`
}

type SetCurrencyRequest struct {
	Currency string `json:"currency"`
}

// /cart, /cart/{product_id}, /me/currency を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, authn []echo.MiddlewareFunc, sess echo.MiddlewareFunc) {
	e.PUT("/me/currency", h.setCurrency, withSession(authn, sess)...)

	g := e.Group("/cart")
	g.Use(authn...)
	g.Use(middleware.RoleGuard(model.RoleBuyer))
	g.Use(sess)

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clear)
	g.DELETE("/:product_id", h.removeFirst)
}

func (h *CartHandler) getCart(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.uc.GetCart(s))
}

func (h *CartHandler) addToCart(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Add(c.Request().Context(), s, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 同じ商品が複数行あっても最初の1行だけ消す
func (h *CartHandler) removeFirst(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.uc.RemoveFirst(s, c.Param("product_id")))
}

func (h *CartHandler) clear(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.uc.Clear(s))
}

func (h *CartHandler) setCurrency(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SetCurrencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetCurrency(s, req.Currency)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
