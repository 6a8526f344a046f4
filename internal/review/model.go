package review

import (
	"errors"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

var (
	ErrNotFound = errors.New("proposal not found")
	ErrResolved = errors.New("proposal already resolved")
)

// Proposal statuses. A proposal is terminal once it leaves pending.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusCreatedNew = "created_new"
)

// Proposal is one raw text waiting for an operator verdict, with the
// candidates normalization could not decide between.
type Proposal struct {
	ID         string                   `json:"id"`
	RawText    string                   `json:"raw_text"`
	Source     string                   `json:"source"`
	Candidates []matching.Candidate     `json:"candidates"`
	BestScore  float64                  `json:"best_score"`
	Status     string                   `json:"status"`
	ChosenSKU  string                   `json:"chosen_sku,omitempty"`
	NewProduct *normalize.NewProductSpec `json:"new_product,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	ResolvedAt *time.Time               `json:"resolved_at,omitempty"`
}
