package cart

import (
	"sync"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Cart はセッション内だけで持つカート。永続化しない。
type Cart struct {
	mu    sync.Mutex
	lines []model.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Add は数量1の行を末尾に追加する。同じ商品でもまとめない。
func (c *Cart) Add(p model.Product) model.CartLine {
	line := model.NewCartLine(p)

	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()

	return line
}

// RemoveFirst は productID が一致する最初の1行だけを消す。無ければ何もしない。
func (c *Cart) RemoveFirst(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Remove は渡された行を1行ずつ、最初に一致した行から消す。
// 注文済みの行だけを消すのに使う（その間に追加された行は残る）。
func (c *Cart) Remove(lines []model.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		for i, x := range c.lines {
			if x.ProductID == l.ProductID && x.PriceUSD.Equal(l.PriceUSD) {
				c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
				break
			}
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines は追加順のコピーを返す。
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.PriceUSD)
	}
	return total
}
