package server

import (
	"marketplace/internal/handler"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Seller  *handler.SellerHandler
}

// RegisterRoutes は全ルートを登録する。
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, users repository.UserRepository, sessions middleware.SessionResolver) {
	authn := []echo.MiddlewareFunc{
		middleware.AuthJWT(jwtSecret),
		middleware.TokenVersionGuard(users),
	}
	sess := middleware.SessionLoader(sessions)

	h.Auth.RegisterRoutes(e, authn, sess)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, authn, sess)
	h.Order.RegisterRoutes(e, authn, sess)
	h.Seller.RegisterRoutes(e, authn, sess)
}
