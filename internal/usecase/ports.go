package usecase

import (
	"context"
	"time"

	"marketplace/internal/domain/model"

	"github.com/google/uuid"
)

// 画像などの置き場所。戻り値は公開URL。
type ObjectStorage interface {
	Upload(ctx context.Context, path string, contentType string, body []byte) (string, error)
}

// 注文イベントなどの送信先
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

// 生成AI
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// 生成結果のキャッシュ
type DescriptionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// サインイン直後のプロフィール取得（リトライ込み）
type ProfileLoader interface {
	Load(ctx context.Context, userID string) (model.Profile, error)
}

// アップロードされたファイル
type Upload struct {
	ContentType string
	Body        []byte
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
