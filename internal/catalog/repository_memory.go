package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository backs handler and service tests without Postgres.
type InMemoryRepository struct {
	mu       sync.Mutex
	products map[string]*MasterProduct
	seen     map[string]map[string]bool
	sequence int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		products: map[string]*MasterProduct{},
		seen:     map[string]map[string]bool{},
	}
}

func (r *InMemoryRepository) Create(_ context.Context, p *MasterProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.SKU]; exists {
		return nil
	}

	r.sequence++
	clone := *p
	clone.Status = StatusActive
	clone.CreatedAt = time.Now().Add(time.Duration(r.sequence) * time.Millisecond)
	clone.UpdatedAt = clone.CreatedAt
	r.products[p.SKU] = &clone
	p.Status = StatusActive
	return nil
}

func (r *InMemoryRepository) GetBySKU(_ context.Context, sku string) (*MasterProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *InMemoryRepository) ListActiveByCategory(_ context.Context, category string) ([]MasterProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []MasterProduct
	for _, p := range r.products {
		if p.Status == StatusActive && p.Category == category {
			out = append(out, *p)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *InMemoryRepository) ListActive(_ context.Context) ([]MasterProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []MasterProduct
	for _, p := range r.products {
		if p.Status == StatusActive {
			out = append(out, *p)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *InMemoryRepository) IncrementCounters(_ context.Context, sku, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[sku]
	if !ok {
		return ErrNotFound
	}

	p.ReceiptCount++
	if r.seen[sku] == nil {
		r.seen[sku] = map[string]bool{}
	}
	if !r.seen[sku][userID] {
		r.seen[sku][userID] = true
		p.UserCount++
	}
	return nil
}

func (r *InMemoryRepository) SetEmbedding(_ context.Context, sku string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[sku]
	if !ok {
		return ErrNotFound
	}
	p.Embedding = embedding
	return nil
}

func (r *InMemoryRepository) Deactivate(_ context.Context, sku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[sku]
	if !ok {
		return ErrNotFound
	}
	p.Status = StatusInactive
	return nil
}

func (r *InMemoryRepository) AbsorbCounters(_ context.Context, fromSKU, toSKU string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.products[fromSKU]
	if !ok {
		return ErrNotFound
	}
	to, ok := r.products[toSKU]
	if !ok {
		return ErrNotFound
	}

	to.ReceiptCount += from.ReceiptCount
	if r.seen[toSKU] == nil {
		r.seen[toSKU] = map[string]bool{}
	}
	for userID := range r.seen[fromSKU] {
		r.seen[toSKU][userID] = true
	}
	delete(r.seen, fromSKU)
	to.UserCount = len(r.seen[toSKU])
	return nil
}

func sortByCreation(products []MasterProduct) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
}
