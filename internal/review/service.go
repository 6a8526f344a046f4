package review

import (
	"context"
	"errors"
	"log"

	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

var ErrUnknownCandidate = errors.New("sku is not among the proposal candidates")

// ItemQueue re-queues receipt items that were parked while their text
// waited for review. Implemented by the ingest repository.
type ItemQueue interface {
	RequeueForText(ctx context.Context, description string) (int, error)
}

// Service resolves review proposals. Every resolution is terminal; the
// catalog writes behind approve and create-new are idempotent, so an
// operator retrying a request cannot corrupt state.
type Service struct {
	repo       Repository
	normalizer *normalize.Service
	items      ItemQueue
}

func NewService(repo Repository, normalizer *normalize.Service, items ItemQueue) *Service {
	return &Service{repo: repo, normalizer: normalizer, items: items}
}

// Items held back for this text now resolve through the fresh synonym, so
// their price observations are not lost.
func (s *Service) requeueItems(ctx context.Context, rawText string) {
	n, err := s.items.RequeueForText(ctx, rawText)
	if err != nil {
		log.Printf("⚠️  [REVIEW] requeue for %q failed: %v", rawText, err)
		return
	}
	if n > 0 {
		log.Printf("[REVIEW] requeued %d items for %q", n, rawText)
	}
}

func (s *Service) Pending(ctx context.Context, limit int) ([]Proposal, error) {
	return s.repo.ListPending(ctx, limit)
}

func (s *Service) Get(ctx context.Context, id string) (*Proposal, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve binds the proposal's raw text to one of its candidates at full
// confidence.
func (s *Service) Approve(ctx context.Context, id, sku, userID string) (*Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != StatusPending {
		return nil, ErrResolved
	}

	found := false
	for _, c := range proposal.Candidates {
		if c.Product.SKU == sku {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnknownCandidate
	}

	if err := s.normalizer.Bind(ctx, proposal.RawText, sku, 1.0, userID); err != nil {
		return nil, err
	}
	if err := s.repo.Resolve(ctx, id, StatusApproved, sku, nil); err != nil {
		return nil, err
	}
	s.requeueItems(ctx, proposal.RawText)

	log.Printf("[REVIEW] proposal %s approved: %q -> %s", id, proposal.RawText, sku)
	return s.repo.GetByID(ctx, id)
}

// Reject closes the proposal without binding anything. The raw text may be
// proposed again if it shows up on a later receipt.
func (s *Service) Reject(ctx context.Context, id string) (*Proposal, error) {
	if err := s.repo.Resolve(ctx, id, StatusRejected, "", nil); err != nil {
		return nil, err
	}
	log.Printf("[REVIEW] proposal %s rejected", id)
	return s.repo.GetByID(ctx, id)
}

// CreateNew mints an operator-specified product for the proposal's raw
// text instead of picking a candidate.
func (s *Service) CreateNew(ctx context.Context, id, userID string, spec *normalize.NewProductSpec) (*Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != StatusPending {
		return nil, ErrResolved
	}

	sku, err := s.normalizer.CreateProduct(ctx, proposal.RawText, userID, spec, true)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Resolve(ctx, id, StatusCreatedNew, sku, spec); err != nil {
		return nil, err
	}
	s.requeueItems(ctx, proposal.RawText)

	log.Printf("[REVIEW] proposal %s resolved with new product %s", id, sku)
	return s.repo.GetByID(ctx, id)
}
