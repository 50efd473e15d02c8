// Package inventory maintains the client-side product collections, one per
// live session, and keeps them synchronized with backend mutations.
package inventory

import (
	"context"
	"sync"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

// ProductLister is the slice of the backend client a collection needs.
type ProductLister interface {
	ListProducts(ctx context.Context, token string) ([]domain.Product, error)
}

// Collection is the authoritative in-memory product sequence for one
// session, keyed by id in backend response order. All mutations flow through
// MergeOne/RemoveByID after the corresponding backend call has completed.
type Collection struct {
	sid    string
	token  string
	lister ProductLister

	mu     sync.Mutex
	loaded bool
	items  []domain.Product
}

func NewCollection(sid, token string, lister ProductLister) *Collection {
	return &Collection{sid: sid, token: token, lister: lister}
}

func (c *Collection) SID() string { return c.sid }

// Load fetches the collection exactly once per session readiness; later
// calls are no-ops. Without an access token the HTTP call is never issued:
// the collection stays empty and a diagnostic is logged.
func (c *Collection) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	return c.fetch(ctx)
}

// Refresh re-fetches unconditionally, used by the background refresh job and
// the manual refresh endpoint.
func (c *Collection) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch(ctx)
}

// fetch runs under c.mu.
func (c *Collection) fetch(ctx context.Context) error {
	if c.token == "" {
		zap.L().Warn("product list requested without access token",
			zap.String("sid", c.sid))
		c.loaded = true
		c.items = nil
		return nil
	}
	products, err := c.lister.ListProducts(ctx, c.token)
	if err != nil {
		zap.L().Error("product list fetch failed",
			zap.String("sid", c.sid), zap.Error(err))
		return err
	}
	c.loaded = true
	c.items = products
	return nil
}

// Products snapshots the collection in display order.
func (c *Collection) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Product, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// MergeOne inserts a new product or replaces the entry with the same id,
// preserving order and id uniqueness.
func (c *Collection) MergeOne(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i] = p
			return
		}
	}
	c.items = append(c.items, p)
}

// RemoveByID evicts exactly the entry with the given id, if present.
func (c *Collection) RemoveByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Summary aggregates the collection for the dashboard header.
type Summary struct {
	Products   int     `json:"products"`
	TotalUnits int     `json:"totalUnits"`
	StockValue float64 `json:"stockValue"`
	MeanPrice  float64 `json:"meanPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

func (c *Collection) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{Products: len(c.items)}
	if len(c.items) == 0 {
		return s
	}

	prices := make(stats.Float64Data, 0, len(c.items))
	for _, p := range c.items {
		s.TotalUnits += p.Quantity
		s.StockValue += p.Price * float64(p.Quantity)
		prices = append(prices, p.Price)
	}
	s.MeanPrice, _ = stats.Mean(prices)
	s.MinPrice, _ = stats.Min(prices)
	s.MaxPrice, _ = stats.Max(prices)
	return s
}
