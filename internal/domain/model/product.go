package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 出品後は変更しない（編集APIはない）
type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	PriceUSD    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_usd"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	ImageURL    string          `gorm:"type:text;not null" json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 画像なしで出品したときの画像
const DefaultProductImageURL = "https://picsum.photos/400/400"
