package repository

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, translateError(err)
	}
	return order, nil
}

func (r *OrderGormRepository) ListByBuyerID(ctx context.Context, buyerID string) ([]model.Order, error) {
	items := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, translateError(err)
	}
	return items, nil
}

// 購入者の名前とメールだけを一緒に読む
func (r *OrderGormRepository) ListBySellerID(ctx context.Context, sellerID string) ([]model.Order, error) {
	items := []model.Order{}
	err := r.db.WithContext(ctx).
		Preload("BuyerProfile", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email")
		}).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, translateError(err)
	}
	return items, nil
}

var _ repo.OrderRepository = (*OrderGormRepository)(nil)
