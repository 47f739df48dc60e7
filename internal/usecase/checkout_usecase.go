package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/checkout"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const RoutingKeyOrderPlaced = "order.placed"

type CheckoutUsecase struct {
	tx          repo.TransactionManager
	orders      repo.OrderRepository
	storage     ObjectStorage
	events      EventPublisher
	deliveryFee decimal.Decimal
	clock       Clock
	ids         IDGenerator
	log         zerolog.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	storage ObjectStorage,
	events EventPublisher,
	deliveryFee decimal.Decimal,
	clock Clock,
	ids IDGenerator,
	log zerolog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		orders:      orders,
		storage:     storage,
		events:      events,
		deliveryFee: deliveryFee,
		clock:       clock,
		ids:         ids,
		log:         log,
	}
}

type PlaceOrdersInput struct {
	DeliveryNeeded bool
	PaymentRef     string
	// 支払い証明の画像（任意）
	Proof *Upload
}

type PlaceOrdersOutput struct {
	Message string        `json:"message"`
	Orders  []model.Order `json:"orders"`
}

// 注文作成イベント
type OrderPlacedEvent struct {
	OrderID        string          `json:"order_id"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       string          `json:"seller_id"`
	TotalAmountUSD decimal.Decimal `json:"total_amount_usd"`
	DeliveryNeeded bool            `json:"delivery_needed"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PlaceOrders はカートを出品者ごとの pending 注文にする。
// 注文の保存は1トランザクションで、どれか1件でも失敗したら全部ロールバックしカートは残す。
func (u *CheckoutUsecase) PlaceOrders(ctx context.Context, s *session.Session, in PlaceOrdersInput) (PlaceOrdersOutput, error) {
	buyer := s.Profile()
	if buyer.Role != model.RoleBuyer {
		return PlaceOrdersOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	lines := s.Cart().Lines()
	if len(lines) == 0 {
		return PlaceOrdersOutput{}, badRequest("cart empty")
	}

	ref := strings.TrimSpace(in.PaymentRef)
	if ref == "" {
		return PlaceOrdersOutput{}, badRequest("payment reference required")
	}

	//証明画像のアップロードは失敗しても続ける
	proofURL := ""
	if in.Proof != nil && len(in.Proof.Body) > 0 {
		path := fmt.Sprintf("payments/%s/%d", buyer.ID, u.clock.Now().UnixMilli())
		url, err := u.storage.Upload(ctx, path, in.Proof.ContentType, in.Proof.Body)
		if err != nil {
			u.log.Warn().Err(err).Str("buyer_id", buyer.ID).Msg("payment proof upload failed")
		} else {
			proofURL = url
		}
	}

	drafts := checkout.BuildDrafts(lines, in.DeliveryNeeded, u.deliveryFee)
	last4 := checkout.Last4(ref)

	created := make([]model.Order, 0, len(drafts))

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created = created[:0]
		for _, d := range drafts {
			o := model.Order{
				ID:              u.ids.NewID(),
				BuyerID:         buyer.ID,
				SellerID:        d.SellerID,
				ProductDetails:  d.Lines,
				TotalAmountUSD:  d.TotalUSD,
				PaymentRefLast4: last4,
				PaymentProofURL: proofURL,
				DeliveryNeeded:  in.DeliveryNeeded,
				Status:          model.OrderStatusPending,
				CreatedAt:       u.clock.Now(),
			}

			saved, err := r.Orders().Create(ctx, o)
			if err != nil {
				return fmt.Errorf("create order for seller %s: %w", d.SellerID, err)
			}

			after, _ := json.Marshal(saved)
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  buyer.ID,
				Action:       model.AuditActionPlaceOrder,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   saved.ID,
				AfterJSON:    string(after),
				CreatedAt:    saved.CreatedAt,
			}); err != nil {
				return fmt.Errorf("audit order %s: %w", saved.ID, err)
			}

			created = append(created, saved)
		}
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("buyer_id", buyer.ID).Int("orders", len(drafts)).Msg("place orders")
		return PlaceOrdersOutput{}, NewHTTPError(http.StatusInternalServerError, MsgCheckoutFailed)
	}

	//注文した行だけ消す。処理中に追加された行は残す
	s.Cart().Remove(lines)

	//イベント送信は失敗しても注文は成立
	for _, o := range created {
		ev := OrderPlacedEvent{
			OrderID:        o.ID,
			BuyerID:        o.BuyerID,
			SellerID:       o.SellerID,
			TotalAmountUSD: o.TotalAmountUSD,
			DeliveryNeeded: o.DeliveryNeeded,
			CreatedAt:      o.CreatedAt,
		}
		if err := u.events.Publish(ctx, RoutingKeyOrderPlaced, ev); err != nil {
			u.log.Warn().Err(err).Str("order_id", o.ID).Msg("publish order.placed")
		}
	}

	return PlaceOrdersOutput{Message: MsgCheckoutSucceeded, Orders: created}, nil
}

// ListMyOrders は購入者の注文履歴。新しい順
func (u *CheckoutUsecase) ListMyOrders(ctx context.Context, buyerID string) ([]model.Order, error) {
	orders, err := u.orders.ListByBuyerID(ctx, buyerID)
	if err != nil {
		u.log.Error().Err(err).Str("buyer_id", buyerID).Msg("list buyer orders")
		return nil, errInternal
	}
	return orders, nil
}
