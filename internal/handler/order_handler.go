package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入者のチェックアウトと注文履歴
type OrderHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewOrderHandler(uc *usecase.CheckoutUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authn []echo.MiddlewareFunc, sess echo.MiddlewareFunc) {
	mw := withSession(authn, sess, middleware.RoleGuard(model.RoleBuyer))

	e.POST("/checkout", h.checkout, mw...)
	e.GET("/orders", h.list, mw...)
}

// POST /checkout (multipart)
// delivery, payment_ref, proof
func (h *OrderHandler) checkout(c echo.Context) error {
	s, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	delivery := false
	if v := c.FormValue("delivery"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid delivery"})
		}
		delivery = b
	}

	proof, err := readUpload(c, "proof")
	if err != nil {
		return uploadError(c, err)
	}

	out, err := h.uc.PlaceOrders(c.Request().Context(), s, usecase.PlaceOrdersInput{
		DeliveryNeeded: delivery,
		PaymentRef:     c.FormValue("payment_ref"),
		Proof:          proof,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
