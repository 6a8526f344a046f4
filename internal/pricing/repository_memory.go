package pricing

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository applies the replacement rule under a mutex.
type InMemoryRepository struct {
	mu     sync.Mutex
	prices map[string]*CurrentPrice // keyed by sku + "\x00" + establishment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{prices: make(map[string]*CurrentPrice)}
}

func priceKey(sku, establishment string) string {
	return sku + "\x00" + establishment
}

func (r *InMemoryRepository) Apply(_ context.Context, obs Observation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := priceKey(obs.SKU, obs.Establishment)
	current, ok := r.prices[key]
	if !ok {
		r.prices[key] = &CurrentPrice{
			SKU:           obs.SKU,
			Establishment: obs.Establishment,
			UnitPrice:     obs.UnitPrice,
			ObservedAt:    obs.ObservedAt,
			UpdatedAt:     time.Now(),
		}
		return true, nil
	}

	if !ShouldReplace(*current, obs) {
		return false, nil
	}
	current.UnitPrice = obs.UnitPrice
	current.ObservedAt = obs.ObservedAt
	current.UpdatedAt = time.Now()
	return true, nil
}

func (r *InMemoryRepository) Get(_ context.Context, sku, establishment string) (*CurrentPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.prices[priceKey(sku, establishment)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) ListBySKU(_ context.Context, sku string) ([]CurrentPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []CurrentPrice
	for _, p := range r.prices {
		if p.SKU == sku {
			out = append(out, *p)
		}
	}
	sortPrices(out)
	return out, nil
}

func (r *InMemoryRepository) ListBySKUs(_ context.Context, skus []string) ([]CurrentPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(skus))
	for _, sku := range skus {
		want[sku] = true
	}

	var out []CurrentPrice
	for _, p := range r.prices {
		if want[p.SKU] {
			out = append(out, *p)
		}
	}
	sortPrices(out)
	return out, nil
}

func (r *InMemoryRepository) ReassignSKU(_ context.Context, fromSKU, toSKU string) error {
	r.mu.Lock()
	moved := []Observation{}
	for key, p := range r.prices {
		if p.SKU != fromSKU {
			continue
		}
		delete(r.prices, key)
		moved = append(moved, Observation{
			SKU:           toSKU,
			Establishment: p.Establishment,
			UnitPrice:     p.UnitPrice,
			ObservedAt:    p.ObservedAt,
		})
	}
	r.mu.Unlock()

	for _, obs := range moved {
		if _, err := r.Apply(context.Background(), obs); err != nil {
			return err
		}
	}
	return nil
}

func sortPrices(prices []CurrentPrice) {
	sort.Slice(prices, func(i, j int) bool {
		if prices[i].SKU != prices[j].SKU {
			return prices[i].SKU < prices[j].SKU
		}
		if prices[i].UnitPrice != prices[j].UnitPrice {
			return prices[i].UnitPrice < prices[j].UnitPrice
		}
		return prices[i].Establishment < prices[j].Establishment
	})
}
