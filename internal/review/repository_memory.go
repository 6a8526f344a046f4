package review

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

// InMemoryRepository backs the review queue for tests.
type InMemoryRepository struct {
	mu        sync.Mutex
	proposals map[string]*Proposal
	nextID    int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{proposals: make(map[string]*Proposal)}
}

func (r *InMemoryRepository) CreateProposal(_ context.Context, draft normalize.ProposalDraft) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.proposals {
		if p.RawText == draft.RawText && p.Status == StatusPending {
			return p.ID, nil
		}
	}

	r.nextID++
	id := fmt.Sprintf("proposal-%d", r.nextID)
	r.proposals[id] = &Proposal{
		ID:         id,
		RawText:    draft.RawText,
		Source:     draft.Source,
		Candidates: draft.Candidates,
		BestScore:  draft.BestScore,
		Status:     StatusPending,
		CreatedAt:  time.Now().Add(time.Duration(r.nextID) * time.Microsecond),
	}
	return id, nil
}

func (r *InMemoryRepository) FindOpenProposal(_ context.Context, rawText string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.proposals {
		if p.RawText == rawText && p.Status == StatusPending {
			return p.ID, true, nil
		}
	}
	return "", false, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *InMemoryRepository) ListPending(_ context.Context, limit int) ([]Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Proposal
	for _, p := range r.proposals {
		if p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Resolve(_ context.Context, id, status, chosenSKU string, newProduct *normalize.NewProductSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status != StatusPending {
		return ErrResolved
	}

	now := time.Now()
	p.Status = status
	p.ChosenSKU = chosenSKU
	p.NewProduct = newProduct
	p.ResolvedAt = &now
	return nil
}
