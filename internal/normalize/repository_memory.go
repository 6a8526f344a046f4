package normalize

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// InMemoryRepository is a map-backed SynonymRepository used in tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	synonyms map[string]*Synonym // keyed by rawText + "\x00" + sku
	nextID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{synonyms: make(map[string]*Synonym)}
}

func synonymKey(rawText, sku string) string {
	return rawText + "\x00" + sku
}

func (r *InMemoryRepository) Upsert(ctx context.Context, s *Synonym) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := synonymKey(s.RawText, s.SKU)
	if existing, ok := r.synonyms[key]; ok {
		if s.Confidence > existing.Confidence {
			existing.Confidence = s.Confidence
		}
		existing.Method = s.Method
		existing.UpdatedAt = time.Now()
		*s = *existing
		return nil
	}

	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	stored := *s
	r.synonyms[key] = &stored
	return nil
}

func (r *InMemoryRepository) GetByRawText(ctx context.Context, rawText string) (*Synonym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Synonym
	for _, s := range r.synonyms {
		if s.RawText != rawText {
			continue
		}
		if best == nil || s.Confidence > best.Confidence {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (r *InMemoryRepository) Lookup(ctx context.Context, rawText, canonicalText string) ([]matching.SynonymHit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bySKU := make(map[string]float64)
	for _, s := range r.synonyms {
		if s.RawText != rawText && s.NormalizedText != canonicalText {
			continue
		}
		if s.Confidence > bySKU[s.SKU] {
			bySKU[s.SKU] = s.Confidence
		}
	}

	hits := make([]matching.SynonymHit, 0, len(bySKU))
	for sku, conf := range bySKU {
		hits = append(hits, matching.SynonymHit{SKU: sku, Confidence: conf})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Confidence != hits[j].Confidence {
			return hits[i].Confidence > hits[j].Confidence
		}
		return hits[i].SKU < hits[j].SKU
	})
	return hits, nil
}

func (r *InMemoryRepository) ListBySKU(ctx context.Context, sku string) ([]Synonym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Synonym
	for _, s := range r.synonyms {
		if s.SKU == sku {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].RawText < out[j].RawText
	})
	return out, nil
}

func (r *InMemoryRepository) ReassignSKU(ctx context.Context, fromSKU, toSKU string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, s := range r.synonyms {
		if s.SKU != fromSKU {
			continue
		}
		delete(r.synonyms, key)
		targetKey := synonymKey(s.RawText, toSKU)
		if existing, ok := r.synonyms[targetKey]; ok {
			if s.Confidence > existing.Confidence {
				existing.Confidence = s.Confidence
			}
			continue
		}
		s.SKU = toSKU
		s.UpdatedAt = time.Now()
		r.synonyms[targetKey] = s
	}
	return nil
}
