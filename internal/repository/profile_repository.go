package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// プロフィールは登録時に1回だけ作る。更新はない。
type ProfileRepository interface {
	// 同じIDが既にあれば ErrConflict
	Create(ctx context.Context, p model.Profile) error
	FindByID(ctx context.Context, id string) (model.Profile, error)
}
