package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	// 購入者の注文。新しい順
	ListByBuyerID(ctx context.Context, buyerID string) ([]model.Order, error)
	// 出品者宛の注文。購入者のプロフィール（名前・メール）付き、新しい順
	ListBySellerID(ctx context.Context, sellerID string) ([]model.Order, error)
}
