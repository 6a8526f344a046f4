package dedup

import (
	"context"
	"sort"
	"sync"
)

type InMemoryPairRepository struct {
	mu    sync.RWMutex
	pairs map[[2]string]bool
}

func NewInMemoryPairRepository() *InMemoryPairRepository {
	return &InMemoryPairRepository{pairs: make(map[[2]string]bool)}
}

func (r *InMemoryPairRepository) Ignore(_ context.Context, skuA, skuB string) error {
	a, b := orderPair(skuA, skuB)
	r.mu.Lock()
	r.pairs[[2]string{a, b}] = true
	r.mu.Unlock()
	return nil
}

func (r *InMemoryPairRepository) IsIgnored(_ context.Context, skuA, skuB string) (bool, error) {
	a, b := orderPair(skuA, skuB)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pairs[[2]string{a, b}], nil
}

func (r *InMemoryPairRepository) ListIgnored(_ context.Context) ([][2]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([][2]string, 0, len(r.pairs))
	for pair := range r.pairs {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out, nil
}
