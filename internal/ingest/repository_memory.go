package ingest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryRepository backs the queue with a slice for tests.
type InMemoryRepository struct {
	mu    sync.Mutex
	items []*ReceiptItem
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) EnqueueBatch(_ context.Context, items []ReceiptItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for i := range items {
		it := items[i]
		it.CreatedAt = now.Add(time.Duration(len(r.items)) * time.Microsecond)
		it.UpdatedAt = it.CreatedAt
		r.items = append(r.items, &it)
	}
	return nil
}

func (r *InMemoryRepository) FetchPendingBatch(_ context.Context, limit int) ([]ReceiptItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ReceiptItem
	for _, it := range r.items {
		if it.Status != StatusPending {
			continue
		}
		out = append(out, *it)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkNormalized(_ context.Context, id, sku string) error {
	return r.update(id, StatusNormalized, "", sku)
}

func (r *InMemoryRepository) MarkPendingReview(_ context.Context, id string) error {
	return r.update(id, StatusPendingReview, "", "")
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id, reason string) error {
	return r.update(id, StatusFailed, reason, "")
}

func (r *InMemoryRepository) RequeueForText(_ context.Context, description string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	requeued := 0
	for _, it := range r.items {
		if it.Status == StatusPendingReview && strings.TrimSpace(it.Description) == description {
			it.Status = StatusPending
			it.UpdatedAt = time.Now()
			requeued++
		}
	}
	return requeued, nil
}

func (r *InMemoryRepository) update(id, status, reason, sku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items {
		if it.ID == id {
			it.Status = status
			it.FailureReason = reason
			it.ResolvedSKU = sku
			it.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (r *InMemoryRepository) ListResolved(_ context.Context) ([]ReceiptItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ReceiptItem
	for _, it := range r.items {
		if it.Status == StatusNormalized && it.ResolvedSKU != "" {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
	return out, nil
}

func (r *InMemoryRepository) ListByReceipt(_ context.Context, receiptID string) ([]ReceiptItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ReceiptItem
	for _, it := range r.items {
		if it.ReceiptID == receiptID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) CountByStatus(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	for _, it := range r.items {
		counts[it.Status]++
	}
	return counts, nil
}
