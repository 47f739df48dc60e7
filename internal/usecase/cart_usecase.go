package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"marketplace/internal/domain/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"
	"marketplace/internal/session"

	"github.com/shopspring/decimal"
)

type CartUsecase struct {
	products  repository.ProductRepository
	formatter pricing.Formatter
}

// DI
func NewCartUsecase(products repository.ProductRepository, formatter pricing.Formatter) *CartUsecase {
	return &CartUsecase{products: products, formatter: formatter}
}

type CartOutput struct {
	Items       []model.CartLine `json:"items"`
	Count       int              `json:"count"`
	SubtotalUSD decimal.Decimal  `json:"subtotal_usd"`
	Subtotal    string           `json:"subtotal"`
	Currency    pricing.Currency `json:"currency"`
}

func (u *CartUsecase) GetCart(s *session.Session) CartOutput {
	return u.view(s)
}

// Add は商品を1件読み、その時点の価格で1行追加する。同じ商品でもまとめない。
func (u *CartUsecase) Add(ctx context.Context, s *session.Session, productID string) (CartOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartOutput{}, badRequest("invalid product_id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, errInternal
	}

	s.Cart().Add(p)
	return u.view(s), nil
}

// RemoveFirst は同じ商品が複数あっても1行だけ消す。無ければ何もしない。
func (u *CartUsecase) RemoveFirst(s *session.Session, productID string) CartOutput {
	s.Cart().RemoveFirst(productID)
	return u.view(s)
}

func (u *CartUsecase) Clear(s *session.Session) CartOutput {
	s.Cart().Clear()
	return u.view(s)
}

// SetCurrency は表示通貨を切り替える。
func (u *CartUsecase) SetCurrency(s *session.Session, raw string) (CartOutput, error) {
	c, err := pricing.ParseCurrency(raw)
	if err != nil {
		return CartOutput{}, badRequest("invalid currency")
	}
	s.SetCurrency(c)
	return u.view(s), nil
}

func (u *CartUsecase) view(s *session.Session) CartOutput {
	lines := s.Cart().Lines()
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.PriceUSD)
	}
	currency := s.Currency()

	return CartOutput{
		Items:       lines,
		Count:       len(lines),
		SubtotalUSD: subtotal,
		Subtotal:    u.formatter.Format(subtotal, currency),
		Currency:    currency,
	}
}
