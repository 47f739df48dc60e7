package session

import (
	"sync"

	"marketplace/internal/cart"
	"marketplace/internal/domain/model"
	"marketplace/internal/pricing"
)

// Session はログイン中ユーザー1人ぶんの状態。DBには保存しない。
type Session struct {
	mu       sync.RWMutex
	profile  model.Profile
	cart     *cart.Cart
	currency pricing.Currency
}

func newSession(p model.Profile) *Session {
	return &Session{
		profile:  p,
		cart:     cart.New(),
		currency: pricing.USD,
	}
}

func (s *Session) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) Cart() *cart.Cart {
	return s.cart
}

func (s *Session) Currency() pricing.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

func (s *Session) SetCurrency(c pricing.Currency) {
	s.mu.Lock()
	s.currency = c
	s.mu.Unlock()
}

// Manager はユーザーIDごとのセッションを持つ。
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Start はサインイン時に呼ぶ。既存のセッションは丸ごと捨てる（カートは空、通貨はUSD）。
func (m *Manager) Start(p model.Profile) *Session {
	s := newSession(p)

	m.mu.Lock()
	m.sessions[p.ID] = s
	m.mu.Unlock()

	return s
}

func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// End はサインアウト時に呼ぶ。無ければ何もしない。
func (m *Manager) End(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}
