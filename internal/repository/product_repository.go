package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 一覧検索。空の項目は絞り込まない。
type ProductListQuery struct {
	Category string
	SellerID string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 新しい順
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
