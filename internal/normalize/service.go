package normalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/afeder69-jpg/picotinho-sub001/internal/canonical"
	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/config"
	"github.com/afeder69-jpg/picotinho-sub001/internal/embedding"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

var ErrEmptyText = errors.New("item text is empty")

// Service turns raw receipt texts into catalog decisions. It owns the
// idempotence guard, runs the retrieval cascade, applies the business-rule
// filter and the threshold policy, and performs the writes each outcome
// requires.
type Service struct {
	synonyms  SynonymRepository
	products  catalog.Repository
	cascade   *matching.Cascade
	proposals ProposalSink
	embedder  embedding.Provider

	thresholds        config.Thresholds
	quantityTolerance float64
}

func NewService(
	synonyms SynonymRepository,
	products catalog.Repository,
	cascade *matching.Cascade,
	proposals ProposalSink,
	embedder embedding.Provider,
	thresholds config.Thresholds,
	quantityTolerance float64,
) *Service {
	return &Service{
		synonyms:          synonyms,
		products:          products,
		cascade:           cascade,
		proposals:         proposals,
		embedder:          embedder,
		thresholds:        thresholds,
		quantityTolerance: quantityTolerance,
	}
}

// NormalizeText resolves one raw item description for one user. Processing
// the same raw text twice never produces two different bindings: an
// existing synonym is reused and an open proposal is not duplicated.
func (s *Service) NormalizeText(ctx context.Context, rawText, categoryHint, userID string) (*Decision, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, ErrEmptyText
	}

	// ---------- idempotence guard ----------
	if existing, err := s.synonyms.GetByRawText(ctx, rawText); err == nil {
		if err := s.products.IncrementCounters(ctx, existing.SKU, userID); err != nil {
			return nil, err
		}
		return &Decision{
			Outcome:    outcomeForMethod(existing.Method),
			SKU:        existing.SKU,
			Confidence: existing.Confidence,
			Reused:     true,
		}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if s.proposals != nil {
		if id, open, err := s.proposals.FindOpenProposal(ctx, rawText); err != nil {
			return nil, err
		} else if open {
			return &Decision{Outcome: OutcomePendingReview, ProposalID: id, Reused: true}, nil
		}
	}

	// ---------- retrieve and filter ----------
	ev, err := s.evaluate(ctx, rawText, categoryHint)
	if err != nil {
		return nil, err
	}

	// ---------- decide and write ----------
	switch ev.outcome {

	case matching.OutcomeAutoAssociate:
		winner := ev.filtered[0]
		if err := s.bind(ctx, rawText, ev.canon.Text, winner.Product.SKU, ev.best, MethodAutomatic, userID); err != nil {
			return nil, err
		}
		return &Decision{
			Outcome:    OutcomeAutoAssociated,
			SKU:        winner.Product.SKU,
			Confidence: ev.best,
			Candidates: ev.filtered,
		}, nil

	case matching.OutcomePendingReview:
		top := ev.filtered
		if len(top) > 5 {
			top = top[:5]
		}
		id, err := s.proposals.CreateProposal(ctx, ProposalDraft{
			RawText:    rawText,
			Source:     "normalization",
			Candidates: top,
			BestScore:  ev.best,
		})
		if err != nil {
			return nil, err
		}
		return &Decision{
			Outcome:    OutcomePendingReview,
			ProposalID: id,
			Confidence: ev.best,
			Candidates: top,
		}, nil

	default:
		derived := deriveSpec(ev.canon)
		derived.Category = ev.category
		sku, err := s.CreateProduct(ctx, rawText, userID, &derived, false)
		if err != nil {
			return nil, err
		}
		return &Decision{
			Outcome:    OutcomeProvisional,
			SKU:        sku,
			Confidence: s.thresholds.ProvisionalConfidence,
		}, nil
	}
}

// evaluation is the shared retrieve-filter-decide result for one text.
type evaluation struct {
	canon    canonical.Canonical
	category string
	filtered []matching.Candidate
	best     float64
	outcome  matching.Outcome
}

func (s *Service) evaluate(ctx context.Context, rawText, categoryHint string) (*evaluation, error) {
	canon := canonical.Normalize(rawText)
	category := catalog.NormalizeCategory(categoryHint)
	auto, review := s.thresholds.ForCategory(category)

	candidates, err := s.cascade.Retrieve(ctx, rawText, canon.Text, auto)
	if err != nil {
		return nil, err
	}

	incoming := incomingFacts(canon, categoryHint)
	filtered := candidates[:0:0]
	for _, c := range candidates {
		if matching.AllowMatch(incoming, matching.Facts(c.Product), s.quantityTolerance) {
			filtered = append(filtered, c)
		}
	}

	best := 0.0
	if len(filtered) > 0 {
		best = filtered[0].Score
	}

	return &evaluation{
		canon:    canon,
		category: category,
		filtered: filtered,
		best:     best,
		outcome:  matching.Decide(best, len(filtered) > 0, auto, review),
	}, nil
}

// Preview runs retrieval and filtering for a text without writing
// anything, so operators can see what normalization would decide.
func (s *Service) Preview(ctx context.Context, rawText, categoryHint string) (*Decision, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, ErrEmptyText
	}

	if existing, err := s.synonyms.GetByRawText(ctx, rawText); err == nil {
		return &Decision{
			Outcome:    outcomeForMethod(existing.Method),
			SKU:        existing.SKU,
			Confidence: existing.Confidence,
			Reused:     true,
		}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ev, err := s.evaluate(ctx, rawText, categoryHint)
	if err != nil {
		return nil, err
	}

	decision := &Decision{Confidence: ev.best, Candidates: ev.filtered}
	switch ev.outcome {
	case matching.OutcomeAutoAssociate:
		decision.Outcome = OutcomeAutoAssociated
		decision.SKU = ev.filtered[0].Product.SKU
	case matching.OutcomePendingReview:
		decision.Outcome = OutcomePendingReview
	default:
		decision.Outcome = OutcomeProvisional
		decision.Confidence = s.thresholds.ProvisionalConfidence
	}
	return decision, nil
}

// Bind links a raw text to an existing master. Used by the review queue
// when an operator approves a candidate.
func (s *Service) Bind(ctx context.Context, rawText, sku string, confidence float64, userID string) error {
	canon := canonical.Normalize(rawText)
	return s.bind(ctx, rawText, canon.Text, sku, confidence, MethodReview, userID)
}

func (s *Service) bind(ctx context.Context, rawText, canonicalText, sku string, confidence float64, method, userID string) error {
	syn := &Synonym{
		RawText:        rawText,
		NormalizedText: canonicalText,
		SKU:            sku,
		Confidence:     confidence,
		Method:         method,
	}
	if err := s.synonyms.Upsert(ctx, syn); err != nil {
		return err
	}
	return s.products.IncrementCounters(ctx, sku, userID)
}

// CreateProduct mints a master product for a text nothing matched. When
// spec is nil the product is derived from the canonical text. Confirmed
// products come from an operator and are bound at full confidence;
// unconfirmed ones are provisional at the configured floor.
func (s *Service) CreateProduct(ctx context.Context, rawText, userID string, spec *NewProductSpec, confirmed bool) (string, error) {
	canon := canonical.Normalize(rawText)
	if spec == nil {
		derived := deriveSpec(canon)
		spec = &derived
	}

	category := catalog.NormalizeCategory(spec.Category)
	sku := catalog.DeriveSKU(category, spec.BaseName, spec.Brand, spec.PackageUnit)

	product := &catalog.MasterProduct{
		SKU:         sku,
		DisplayName: spec.DisplayName,
		BaseName:    spec.BaseName,
		Brand:       spec.Brand,
		Category:    category,
		PackageType: spec.PackageType,
		PackageQty:  spec.PackageQty,
		PackageUnit: spec.PackageUnit,
		IsBulk:      spec.IsBulk,
		Provisional: !confirmed,
		Status:      catalog.StatusActive,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}

	confidence := s.thresholds.ProvisionalConfidence
	method := MethodProvisional
	if confirmed {
		confidence = 1.0
		method = MethodReview
	}
	if err := s.bind(ctx, rawText, canon.Text, sku, confidence, method, userID); err != nil {
		return "", err
	}

	// Best effort: a missing embedding only keeps the product out of the
	// vector strategy until a later pass fills it in.
	if s.embedder != nil {
		if vector, err := s.embedder.Embed(ctx, canon.Text); err != nil {
			log.Printf("[NORMALIZE] embedding for new product %s skipped: %v", sku, err)
		} else if err := s.products.SetEmbedding(ctx, sku, vector); err != nil {
			log.Printf("[NORMALIZE] storing embedding for %s failed: %v", sku, err)
		}
	}

	return sku, nil
}

func incomingFacts(canon canonical.Canonical, categoryHint string) matching.ProductFacts {
	brand, _ := canonical.ExtractBrand(canon.Text)
	facts := matching.ProductFacts{
		Brand:       brand,
		PackageQty:  canon.QuantityValue,
		PackageUnit: canon.QuantityUnit,
	}
	// Only a recognizable hint constrains the category; garbage hints
	// would otherwise pin every item to "outros".
	if catalog.IsValidCategory(strings.ToLower(strings.TrimSpace(categoryHint))) {
		facts.Category = catalog.NormalizeCategory(categoryHint)
	}
	return facts
}

func deriveSpec(canon canonical.Canonical) NewProductSpec {
	brand, remainder := canonical.ExtractBrand(canon.Text)
	baseName := remainder
	if baseName == "" {
		baseName = canon.Text
	}

	display := canon.Text
	if canon.QuantityUnit != "" {
		display = fmt.Sprintf("%s %g%s", canon.Text, canon.QuantityValue, canon.QuantityUnit)
	}

	return NewProductSpec{
		DisplayName: strings.ToUpper(display),
		BaseName:    baseName,
		Brand:       brand,
		Category:    catalog.CategoryDefault,
		PackageQty:  canon.QuantityValue,
		PackageUnit: canon.QuantityUnit,
	}
}

func outcomeForMethod(method string) string {
	if method == MethodProvisional {
		return OutcomeProvisional
	}
	return OutcomeAutoAssociated
}
