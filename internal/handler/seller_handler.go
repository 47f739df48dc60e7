package handler

import (
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出品者用API
type SellerHandler struct {
	uc *usecase.ProductUsecase
}

func NewSellerHandler(uc *usecase.ProductUsecase) *SellerHandler {
	return &SellerHandler{uc: uc}
}

type DescriptionRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (h *SellerHandler) RegisterRoutes(e *echo.Echo, authn []echo.MiddlewareFunc, sess echo.MiddlewareFunc) {
	g := e.Group("/seller")
	g.Use(authn...)
	g.Use(middleware.RoleGuard(model.RoleSeller))
	g.Use(sess)

	g.GET("/products", h.listProducts)
	g.POST("/products", h.createProduct)
	g.POST("/products/description", h.describe)
	g.GET("/orders", h.listOrders)
}

func (h *SellerHandler) listProducts(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListSellerProducts(c.Request().Context(), s.Profile().ID, s.Currency())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /seller/products (multipart)
// title, description, price, category, image
func (h *SellerHandler) createProduct(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	image, err := readUpload(c, "image")
	if err != nil {
		return uploadError(c, err)
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), s.Profile().ID, usecase.CreateProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Image:       image,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *SellerHandler) describe(c echo.Context) error {
	var req DescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.GenerateDescription(c.Request().Context(), req.Title, req.Category)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) listOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListSellerOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
