package matching

import "github.com/afeder69-jpg/picotinho-sub001/internal/catalog"

// Retrieval strategies, in cascade order.
const (
	StrategySynonym   = "synonym"
	StrategyEmbedding = "embedding"
	StrategyFuzzy     = "fuzzy"
)

// Candidate is a master product proposed for an incoming text, with the
// best score any strategy produced for it.
type Candidate struct {
	Product  catalog.MasterProduct `json:"product"`
	Score    float64               `json:"score"`
	Strategy string                `json:"strategy"`
}

// Outcome is the decision policy result for one incoming text.
type Outcome string

const (
	OutcomeAutoAssociate Outcome = "auto_associate"
	OutcomePendingReview Outcome = "pending_review"
	OutcomeProvisional   Outcome = "provisional"
)

// ScoredSKU is a fuzzy-search hit before the product is loaded.
type ScoredSKU struct {
	SKU   string
	Score float64
}
