package pricing

import (
	"context"
	"log"
	"sort"

	"github.com/afeder69-jpg/picotinho-sub001/internal/canonical"
	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
)

// HistorySource replays every resolved receipt item, oldest first.
type HistorySource interface {
	ListResolved(ctx context.Context) ([]ingest.ReceiptItem, error)
}

type Service struct {
	repo           Repository
	repackMinCount int
	repackMaxCount int
}

func NewService(repo Repository, repackMinCount, repackMaxCount int) *Service {
	return &Service{repo: repo, repackMinCount: repackMinCount, repackMaxCount: repackMaxCount}
}

// RecordObservation applies one observation under the replacement rule.
func (s *Service) RecordObservation(ctx context.Context, obs Observation) (bool, error) {
	if err := obs.validate(); err != nil {
		return false, err
	}
	return s.repo.Apply(ctx, obs)
}

// ObservationForItem derives the per-unit observation from a resolved
// receipt item. Multi-unit repacks (a tray of 30 eggs rung up as one line)
// are divided down to the real per-unit price before they enter the store.
func (s *Service) ObservationForItem(item ingest.ReceiptItem) (Observation, bool) {
	unitPrice := item.UnitPrice
	if unitPrice == 0 && item.Quantity > 0 {
		unitPrice = item.TotalPrice / item.Quantity
	}

	total := item.TotalPrice
	if total == 0 {
		total = item.UnitPrice * item.Quantity
	}
	repack := canonical.DetectRepack(item.Description, item.CategoryHint, total, s.repackMinCount, s.repackMaxCount)
	if repack.IsMultiUnit {
		unitPrice = repack.UnitPrice
	}

	if unitPrice <= 0 {
		return Observation{}, false
	}
	return Observation{
		SKU:           item.ResolvedSKU,
		Establishment: item.Establishment,
		UnitPrice:     unitPrice,
		ObservedAt:    item.PurchasedAt,
	}, true
}

func (s *Service) CurrentPrice(ctx context.Context, sku, establishment string) (*CurrentPrice, error) {
	return s.repo.Get(ctx, sku, establishment)
}

// BestPrice returns the cheapest current price for a product among the
// candidate establishments (the caller's area filter). An empty candidate
// list means every establishment with a price.
func (s *Service) BestPrice(ctx context.Context, sku string, establishments []string) (*CurrentPrice, error) {
	prices, err := s.repo.ListBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if len(establishments) > 0 {
		candidates := make(map[string]bool, len(establishments))
		for _, e := range establishments {
			candidates[e] = true
		}
		kept := prices[:0]
		for _, p := range prices {
			if candidates[p.Establishment] {
				kept = append(kept, p)
			}
		}
		prices = kept
	}

	if len(prices) == 0 {
		return nil, ErrNotFound
	}

	best := prices[0]
	for _, p := range prices[1:] {
		if p.UnitPrice < best.UnitPrice {
			best = p
		}
	}
	return &best, nil
}

// BasketTotal is one establishment's coverage of a shopping list.
type BasketTotal struct {
	Establishment string  `json:"establishment"`
	Total         float64 `json:"total"`
	ItemsPriced   int     `json:"items_priced"`
	ItemsMissing  int     `json:"items_missing"`
}

// CompareBasket totals a list of SKUs per establishment. Establishments
// are ranked by coverage first and price second, so a store missing half
// the list never looks cheaper than one that stocks everything.
func (s *Service) CompareBasket(ctx context.Context, skus []string) ([]BasketTotal, error) {
	prices, err := s.repo.ListBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	return totalPerEstablishment(prices, len(skus), func(string) float64 { return 1 }), nil
}

// RecipeItem is one ingredient of a costed recipe.
type RecipeItem struct {
	SKU      string  `json:"sku" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

// RecipeCost prices a recipe at each establishment, quantity-weighted.
func (s *Service) RecipeCost(ctx context.Context, items []RecipeItem) ([]BasketTotal, error) {
	skus := make([]string, 0, len(items))
	qty := make(map[string]float64, len(items))
	for _, it := range items {
		if _, seen := qty[it.SKU]; !seen {
			skus = append(skus, it.SKU)
		}
		qty[it.SKU] += it.Quantity
	}

	prices, err := s.repo.ListBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	return totalPerEstablishment(prices, len(skus), func(sku string) float64 { return qty[sku] }), nil
}

// totalPerEstablishment sums weighted unit prices per establishment and
// ranks stores by coverage first and total second, so a store missing half
// the list never looks cheaper than one that stocks everything.
func totalPerEstablishment(prices []CurrentPrice, listLen int, weight func(sku string) float64) []BasketTotal {
	type slot struct {
		total  float64
		priced map[string]bool
	}
	byEst := make(map[string]*slot)
	for _, p := range prices {
		e, ok := byEst[p.Establishment]
		if !ok {
			e = &slot{priced: make(map[string]bool)}
			byEst[p.Establishment] = e
		}
		if !e.priced[p.SKU] {
			e.priced[p.SKU] = true
			e.total += p.UnitPrice * weight(p.SKU)
		}
	}

	totals := make([]BasketTotal, 0, len(byEst))
	for est, e := range byEst {
		totals = append(totals, BasketTotal{
			Establishment: est,
			Total:         e.total,
			ItemsPriced:   len(e.priced),
			ItemsMissing:  listLen - len(e.priced),
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].ItemsPriced != totals[j].ItemsPriced {
			return totals[i].ItemsPriced > totals[j].ItemsPriced
		}
		if totals[i].Total != totals[j].Total {
			return totals[i].Total < totals[j].Total
		}
		return totals[i].Establishment < totals[j].Establishment
	})
	return totals
}

// BackfillResult summarizes a history replay.
type BackfillResult struct {
	Replayed int `json:"replayed"`
	Applied  int `json:"applied"`
	Skipped  int `json:"skipped"`
}

// Backfill replays every resolved receipt item through the replacement
// rule. The rule is idempotent, so running it twice converges on the same
// store; malformed items are counted and skipped, never fatal.
func (s *Service) Backfill(ctx context.Context, source HistorySource) (*BackfillResult, error) {
	items, err := source.ListResolved(ctx)
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{}
	for _, item := range items {
		obs, ok := s.ObservationForItem(item)
		if !ok {
			result.Skipped++
			continue
		}
		result.Replayed++
		applied, err := s.RecordObservation(ctx, obs)
		if err != nil {
			result.Skipped++
			continue
		}
		if applied {
			result.Applied++
		}
	}

	log.Printf("[PRICING] backfill done: %d replayed, %d applied, %d skipped",
		result.Replayed, result.Applied, result.Skipped)
	return result, nil
}
