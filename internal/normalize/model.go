package normalize

import (
	"context"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// Synonym links one exact receipt text to a master product. The same raw
// text may be linked to at most one SKU; repeated sightings only ever raise
// the stored confidence.
type Synonym struct {
	ID             int64     `json:"id"`
	RawText        string    `json:"raw_text"`
	NormalizedText string    `json:"normalized_text"`
	SKU            string    `json:"sku"`
	Confidence     float64   `json:"confidence"`
	Method         string    `json:"method"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	MethodAutomatic   = "automatic"
	MethodReview      = "review"
	MethodProvisional = "provisional"
)

// Outcome labels for a normalization decision.
const (
	OutcomeAutoAssociated = "auto_associated"
	OutcomePendingReview  = "pending_review"
	OutcomeProvisional    = "provisional"
)

// Decision is the result of normalizing one receipt text.
type Decision struct {
	Outcome    string               `json:"outcome"`
	SKU        string               `json:"sku,omitempty"`
	Confidence float64              `json:"confidence,omitempty"`
	ProposalID string               `json:"proposal_id,omitempty"`
	Candidates []matching.Candidate `json:"candidates,omitempty"`
	Reused     bool                 `json:"reused"`
}

// NewProductSpec carries the fields needed to mint a master product, either
// provisionally during normalization or manually from the review queue.
type NewProductSpec struct {
	DisplayName string  `json:"display_name"`
	BaseName    string  `json:"base_name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	PackageType string  `json:"package_type"`
	PackageQty  float64 `json:"package_qty"`
	PackageUnit string  `json:"package_unit"`
	IsBulk      bool    `json:"is_bulk"`
}

// ProposalDraft is what normalization hands to the review queue when a best
// match lands in the review band.
type ProposalDraft struct {
	RawText    string
	Source     string
	Candidates []matching.Candidate
	BestScore  float64
}

// ProposalSink is the slice of the review queue that normalization needs:
// open a proposal, and detect an already-open one for the same raw text.
type ProposalSink interface {
	CreateProposal(ctx context.Context, draft ProposalDraft) (string, error)
	FindOpenProposal(ctx context.Context, rawText string) (string, bool, error)
}
