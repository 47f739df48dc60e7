package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketplace/internal/domain/model"
	"marketplace/internal/pricing"
	repo "marketplace/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	products  repo.ProductRepository
	orders    repo.OrderRepository
	tx        repo.TransactionManager
	storage   ObjectStorage
	describer *Describer
	formatter pricing.Formatter
	clock     Clock
	ids       IDGenerator
	log       zerolog.Logger
}

// DI
func NewProductUsecase(
	products repo.ProductRepository,
	orders repo.OrderRepository,
	tx repo.TransactionManager,
	storage ObjectStorage,
	describer *Describer,
	formatter pricing.Formatter,
	clock Clock,
	ids IDGenerator,
	log zerolog.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		products:  products,
		orders:    orders,
		tx:        tx,
		storage:   storage,
		describer: describer,
		formatter: formatter,
		clock:     clock,
		ids:       ids,
		log:       log,
	}
}

// 表示価格つきの商品
type ProductItem struct {
	model.Product
	DisplayPrice string `json:"display_price"`
}

type ProductListOutput struct {
	Items    []ProductItem    `json:"items"`
	Currency pricing.Currency `json:"currency"`
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       string
	Category    string
	Image       *Upload
}

type CreateProductOutput struct {
	Message string        `json:"message"`
	Product model.Product `json:"product"`
}

type DescriptionOutput struct {
	Description string `json:"description"`
}

// ListProducts は全商品を返す。category が空か "Todas" なら絞り込まない。
func (u *ProductUsecase) ListProducts(ctx context.Context, category string, currency pricing.Currency) (ProductListOutput, error) {
	q := repo.ProductListQuery{}

	category = strings.TrimSpace(category)
	if category != "" && category != model.AllCategories {
		c, ok := model.NormalizeCategory(category)
		if !ok {
			return ProductListOutput{}, badRequest("invalid category")
		}
		q.Category = c
	}

	items, err := u.products.List(ctx, q)
	if err != nil {
		u.log.Error().Err(err).Msg("list products")
		return ProductListOutput{}, errInternal
	}
	return u.withPrices(items, currency), nil
}

// ListSellerProducts は出品者本人の商品
func (u *ProductUsecase) ListSellerProducts(ctx context.Context, sellerID string, currency pricing.Currency) (ProductListOutput, error) {
	items, err := u.products.List(ctx, repo.ProductListQuery{SellerID: sellerID})
	if err != nil {
		u.log.Error().Err(err).Str("seller_id", sellerID).Msg("list seller products")
		return ProductListOutput{}, errInternal
	}
	return u.withPrices(items, currency), nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, sellerID string, in CreateProductInput) (CreateProductOutput, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return CreateProductOutput{}, badRequest("title required")
	}
	if len([]rune(title)) > 255 {
		return CreateProductOutput{}, badRequest("title too long")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || !price.IsPositive() {
		return CreateProductOutput{}, badRequest("invalid price")
	}
	if price.Exponent() < -2 {
		return CreateProductOutput{}, badRequest("invalid price")
	}

	category, ok := model.NormalizeCategory(in.Category)
	if !ok {
		return CreateProductOutput{}, badRequest("invalid category")
	}

	//画像が無い・失敗したときは既定の画像
	imageURL := model.DefaultProductImageURL
	if in.Image != nil && len(in.Image.Body) > 0 {
		path := fmt.Sprintf("products/%s/%d", sellerID, u.clock.Now().UnixMilli())
		url, err := u.storage.Upload(ctx, path, in.Image.ContentType, in.Image.Body)
		if err != nil {
			u.log.Warn().Err(err).Str("seller_id", sellerID).Msg("product image upload failed")
		} else {
			imageURL = url
		}
	}

	p := model.Product{
		ID:          u.ids.NewID(),
		SellerID:    sellerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		PriceUSD:    price,
		Category:    category,
		ImageURL:    imageURL,
	}

	var created model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		saved, err := r.Products().Create(ctx, p)
		if err != nil {
			return err
		}

		after, _ := json.Marshal(saved)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  sellerID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   saved.ID,
			AfterJSON:    string(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return err
		}

		created = saved
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("seller_id", sellerID).Msg("create product")
		return CreateProductOutput{}, errInternal
	}

	return CreateProductOutput{Message: MsgProductCreated, Product: created}, nil
}

// GenerateDescription は失敗しても固定文言を返す（エラーにしない）。
func (u *ProductUsecase) GenerateDescription(ctx context.Context, title, category string) (DescriptionOutput, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return DescriptionOutput{}, badRequest(MsgTitleRequired)
	}
	if c, ok := model.NormalizeCategory(category); ok {
		category = c
	}
	return DescriptionOutput{Description: u.describer.Describe(ctx, title, strings.TrimSpace(category))}, nil
}

// ListSellerOrders は出品者宛の注文（購入者の名前・メール付き）
func (u *ProductUsecase) ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	orders, err := u.orders.ListBySellerID(ctx, sellerID)
	if err != nil {
		u.log.Error().Err(err).Str("seller_id", sellerID).Msg("list seller orders")
		return nil, errInternal
	}
	return orders, nil
}

func (u *ProductUsecase) Categories() []string {
	out := make([]string, len(model.Categories))
	copy(out, model.Categories)
	return out
}

func (u *ProductUsecase) withPrices(items []model.Product, currency pricing.Currency) ProductListOutput {
	out := ProductListOutput{Items: make([]ProductItem, 0, len(items)), Currency: currency}
	for _, p := range items {
		out.Items = append(out.Items, ProductItem{
			Product:      p,
			DisplayPrice: u.formatter.Format(p.PriceUSD, currency),
		})
	}
	return out
}

