package matching

import (
	"context"
	"log"
	"sort"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/embedding"
)

// MaxCandidates is how many merged candidates the cascade retains.
const MaxCandidates = 10

// SynonymHit is a learned-synonym lookup result.
type SynonymHit struct {
	SKU        string
	Confidence float64
}

// SynonymSource resolves a raw or canonical text against learned synonyms.
type SynonymSource interface {
	Lookup(ctx context.Context, rawText, canonicalText string) ([]SynonymHit, error)
}

// FuzzySource finds lexically similar masters. The Postgres implementation
// uses pg_trgm similarity(); the in-memory one an edit-distance ratio.
type FuzzySource interface {
	Similar(ctx context.Context, text string, floor float64, limit int) ([]ScoredSKU, error)
}

// Cascade merges the three retrieval strategies into one ranked candidate
// list. Strategy failures degrade: an unreachable embedding provider or a
// fuzzy-search error never abort retrieval.
type Cascade struct {
	synonyms SynonymSource
	products catalog.Repository
	fuzzy    FuzzySource
	embedder embedding.Provider
	floor    float64
}

func NewCascade(
	synonyms SynonymSource,
	products catalog.Repository,
	fuzzy FuzzySource,
	embedder embedding.Provider,
	floor float64,
) *Cascade {
	return &Cascade{
		synonyms: synonyms,
		products: products,
		fuzzy:    fuzzy,
		embedder: embedder,
		floor:    floor,
	}
}

// Retrieve runs the cascade for one text. A synonym hit at or above
// autoThreshold short-circuits: no embedding or fuzzy work is done.
func (c *Cascade) Retrieve(
	ctx context.Context,
	rawText string,
	canonicalText string,
	autoThreshold float64,
) ([]Candidate, error) {

	merged := map[string]Candidate{}

	// ---------- strategy 1: learned synonyms ----------
	hits, err := c.synonyms.Lookup(ctx, rawText, canonicalText)
	if err != nil {
		return nil, err
	}

	shortCircuit := false
	for _, hit := range hits {
		product, err := c.products.GetBySKU(ctx, hit.SKU)
		if err != nil || product.Status != catalog.StatusActive {
			continue
		}
		mergeCandidate(merged, Candidate{
			Product:  *product,
			Score:    hit.Confidence,
			Strategy: StrategySynonym,
		})
		if hit.Confidence >= autoThreshold {
			shortCircuit = true
		}
	}

	if shortCircuit {
		return rank(merged), nil
	}

	// ---------- strategy 2: embedding similarity ----------
	if c.embedder != nil {
		vector, err := c.embedder.Embed(ctx, canonicalText)
		if err != nil {
			log.Printf("[MATCHING] embedding unavailable, continuing without it: %v", err)
		} else {
			products, err := c.products.ListActive(ctx)
			if err != nil {
				return nil, err
			}
			for _, p := range products {
				if len(p.Embedding) == 0 {
					continue
				}
				score := embedding.Cosine(vector, p.Embedding)
				if score < c.floor {
					continue
				}
				mergeCandidate(merged, Candidate{
					Product:  p,
					Score:    score,
					Strategy: StrategyEmbedding,
				})
			}
		}
	}

	// ---------- strategy 3: fuzzy lexical ----------
	if c.fuzzy != nil {
		scored, err := c.fuzzy.Similar(ctx, canonicalText, c.floor, MaxCandidates*2)
		if err != nil {
			log.Printf("[MATCHING] fuzzy search failed, continuing without it: %v", err)
		} else {
			for _, hit := range scored {
				product, err := c.products.GetBySKU(ctx, hit.SKU)
				if err != nil || product.Status != catalog.StatusActive {
					continue
				}
				mergeCandidate(merged, Candidate{
					Product:  *product,
					Score:    hit.Score,
					Strategy: StrategyFuzzy,
				})
			}
		}
	}

	return rank(merged), nil
}

// mergeCandidate keeps the maximum score per master product.
func mergeCandidate(merged map[string]Candidate, c Candidate) {
	existing, ok := merged[c.Product.SKU]
	if !ok || c.Score > existing.Score {
		merged[c.Product.SKU] = c
	}
}

func rank(merged map[string]Candidate) []Candidate {
	candidates := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Product.SKU < candidates[j].Product.SKU
	})

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}
