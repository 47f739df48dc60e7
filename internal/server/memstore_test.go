package server_test

import (
	"context"
	"sort"
	"sync"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
)

// テスト用のメモリ上のDB。全リポジトリをこの1つで実装する。
type memStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	profiles map[string]model.Profile
	products []model.Product
	orders   []model.Order
	audits   []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]model.User{},
		profiles: map[string]model.Profile{},
	}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return repository.ErrConflict
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Update(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) IncrementTokenVersion(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion++
	r.s.users[id] = u
	return nil
}

type memProfiles struct{ s *memStore }

func (r memProfiles) Create(_ context.Context, p model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return repository.ErrConflict
	}
	r.s.profiles[p.ID] = p
	return nil
}

func (r memProfiles) FindByID(_ context.Context, id string) (model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) List(_ context.Context, q repository.ProductListQuery) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Product{}
	for i := len(r.s.products) - 1; i >= 0; i-- {
		p := r.s.products[i]
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.SellerID != "" && p.SellerID != q.SellerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r memProducts) FindByID(_ context.Context, id string) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repository.ErrNotFound
}

func (r memProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = append(r.s.products, p)
	return p, nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o model.Order) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders = append(r.s.orders, o)
	return o, nil
}

func (r memOrders) ListByBuyerID(_ context.Context, buyerID string) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.BuyerID == buyerID }, false), nil
}

func (r memOrders) ListBySellerID(_ context.Context, sellerID string) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.SellerID == sellerID }, true), nil
}

func (r memOrders) list(match func(model.Order) bool, withBuyer bool) []model.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if !match(o) {
			continue
		}
		if withBuyer {
			if p, ok := r.s.profiles[o.BuyerID]; ok {
				o.BuyerProfile = &model.Profile{ID: p.ID, FullName: p.FullName, Email: p.Email}
			}
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type memAudits struct{ s *memStore }

func (r memAudits) Create(_ context.Context, l model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, l)
	return nil
}

func (s *memStore) Orders() repository.OrderRepository       { return memOrders{s} }
func (s *memStore) Products() repository.ProductRepository   { return memProducts{s} }
func (s *memStore) AuditLogs() repository.AuditLogRepository { return memAudits{s} }

// ロールバックはしない（テストでは失敗させない）
func (s *memStore) WithinTx(_ context.Context, fn func(r repository.TxRepos) error) error {
	return fn(s)
}

func (s *memStore) auditActions() []model.AuditAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditAction, 0, len(s.audits))
	for _, l := range s.audits {
		out = append(out, l.Action)
	}
	return out
}
