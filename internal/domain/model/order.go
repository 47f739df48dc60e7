package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 1回のチェックアウトで出品者ごとに1件作られる。
// status は pending で作成し、以降はこのサービスでは変更しない。
type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID         string          `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID        string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	ProductDetails  []CartLine      `gorm:"type:jsonb;serializer:json;not null" json:"product_details"`
	TotalAmountUSD  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount_usd"`
	PaymentRefLast4 string          `gorm:"type:varchar(16);not null" json:"payment_ref_last4"`
	PaymentProofURL string          `gorm:"type:text" json:"payment_proof_url"`
	DeliveryNeeded  bool            `gorm:"not null;default:false" json:"delivery_needed"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`

	// 出品者向け一覧でだけ埋まる
	BuyerProfile *Profile `gorm:"foreignKey:BuyerID;references:ID" json:"buyer_profile,omitempty"`
}
