package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Repositories
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type ProfileRepoMock struct{ mock.Mock }

func (m *ProfileRepoMock) Create(ctx context.Context, p model.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProfileRepoMock) FindByID(ctx context.Context, id string) (model.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

// 戻り値を指定しなければ入力をそのまま返す
func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	if out, ok := args.Get(0).(model.Product); ok {
		return out, args.Error(1)
	}
	return p, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

// 戻り値を指定しなければ入力をそのまま返す
func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (model.Order, error) {
	args := m.Called(ctx, o)
	if out, ok := args.Get(0).(model.Order); ok {
		return out, args.Error(1)
	}
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID string) ([]model.Order, error) {
	args := m.Called(ctx, buyerID)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) ListBySellerID(ctx context.Context, sellerID string) ([]model.Order, error) {
	args := m.Called(ctx, sellerID)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

type txReposFake struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
	audits   repo.AuditLogRepository
}

func (r *txReposFake) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposFake) Products() repo.ProductRepository   { return r.products }
func (r *txReposFake) AuditLogs() repo.AuditLogRepository { return r.audits }

// fn をそのまま実行する。ロールバックはDB側の責務なのでここでは数えるだけ
type TxManagerFake struct {
	repos *txReposFake
	calls int
}

func newTx(orders repo.OrderRepository, products repo.ProductRepository, audits repo.AuditLogRepository) *TxManagerFake {
	return &TxManagerFake{repos: &txReposFake{orders: orders, products: products, audits: audits}}
}

func (m *TxManagerFake) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	return fn(m.repos)
}

// =====================
// Collaborators
// =====================

type StorageMock struct{ mock.Mock }

func (m *StorageMock) Upload(ctx context.Context, path, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, path, contentType, body)
	return args.String(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, v any) error {
	return m.Called(ctx, routingKey, v).Error(0)
}

type GeneratorMock struct{ mock.Mock }

func (m *GeneratorMock) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// メモリ上のキャッシュ
type mapCache struct {
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string) error {
	c.data[key] = value
	return nil
}

type LoaderMock struct{ mock.Mock }

func (m *LoaderMock) Load(ctx context.Context, userID string) (model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

type ValidatorMock struct{ mock.Mock }

func (m *ValidatorMock) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *ValidatorMock) ValidateLogin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// id-1, id-2, ...
type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// =====================
// helpers
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), want), "error %q does not contain %q", err.Error(), want)
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
}
