package review

import (
	"context"

	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

// Repository stores review proposals. It also serves as the
// normalize.ProposalSink, so the worker and the queue share one store.
type Repository interface {
	CreateProposal(ctx context.Context, draft normalize.ProposalDraft) (string, error)
	FindOpenProposal(ctx context.Context, rawText string) (string, bool, error)
	GetByID(ctx context.Context, id string) (*Proposal, error)
	ListPending(ctx context.Context, limit int) ([]Proposal, error)
	Resolve(ctx context.Context, id, status, chosenSKU string, newProduct *normalize.NewProductSpec) error
}
