package middleware

import (
	"context"
	"net/http"

	"marketplace/internal/session"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// トークンのユーザーに対応するセッションを返す約束
type SessionResolver interface {
	Resume(ctx context.Context, userID string) (*session.Session, error)
}

// SessionLoader はセッションを context に入れる。AuthJWT の後に置く。
func SessionLoader(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			s, err := resolver.Resume(c.Request().Context(), userID)
			if err != nil {
				if he, ok := usecase.AsHTTPError(err); ok {
					return c.JSON(he.Status, errorJSON(he.Message))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxSessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom は SessionLoader が入れたセッションを取り出す。
func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(*session.Session)
	return s, ok && s != nil
}
