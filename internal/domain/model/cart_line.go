package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の商品情報（価格）をそのまま持つ。同じ商品を2回追加すると2行になる。
type CartLine struct {
	ProductID   string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
}

func NewCartLine(p Product) CartLine {
	return CartLine{
		ProductID:   p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		PriceUSD:    p.PriceUSD,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Quantity:    1,
	}
}
