package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, 6, 100), repo
}

func TestRecordObservationAppliesRule(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	applied, err := svc.RecordObservation(ctx, Observation{SKU: "S", Establishment: "E", UnitPrice: 10, ObservedAt: day(1)})
	if err != nil || !applied {
		t.Fatalf("first observation: applied=%v err=%v", applied, err)
	}

	// Newer but higher is remembered nowhere.
	applied, err = svc.RecordObservation(ctx, Observation{SKU: "S", Establishment: "E", UnitPrice: 12, ObservedAt: day(5)})
	if err != nil || applied {
		t.Fatalf("higher price applied=%v err=%v", applied, err)
	}

	price, err := svc.CurrentPrice(ctx, "S", "E")
	if err != nil {
		t.Fatal(err)
	}
	if price.UnitPrice != 10 {
		t.Errorf("price = %.2f, want 10.00", price.UnitPrice)
	}
}

func TestRecordObservationRejectsMalformed(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordObservation(context.Background(), Observation{SKU: "S", Establishment: "E", UnitPrice: 0, ObservedAt: day(1)})
	if !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("err = %v, want ErrInvalidObservation", err)
	}
}

func TestObservationForItemDividesEggTrays(t *testing.T) {
	svc, _ := newTestService()

	obs, ok := svc.ObservationForItem(ingest.ReceiptItem{
		Description:   "OVOS VERMELHOS BANDEJA C/20",
		CategoryHint:  "ovos",
		Establishment: "111",
		ResolvedSKU:   "OVOS-1",
		Quantity:      1,
		UnitPrice:     12.00,
		TotalPrice:    12.00,
		PurchasedAt:   day(2),
	})
	if !ok {
		t.Fatal("observation rejected")
	}
	if obs.UnitPrice != 0.60 {
		t.Errorf("unit price = %.2f, want 0.60", obs.UnitPrice)
	}
}

func TestObservationForItemDerivesUnitPriceFromTotal(t *testing.T) {
	svc, _ := newTestService()

	obs, ok := svc.ObservationForItem(ingest.ReceiptItem{
		Description:   "BANANA PRATA",
		Establishment: "111",
		ResolvedSKU:   "BANANA-1",
		Quantity:      2,
		TotalPrice:    9.00,
		PurchasedAt:   day(2),
	})
	if !ok {
		t.Fatal("observation rejected")
	}
	if obs.UnitPrice != 4.50 {
		t.Errorf("unit price = %.2f, want 4.50", obs.UnitPrice)
	}
}

func TestBestPricePicksCheapestEstablishment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, obs := range []Observation{
		{SKU: "S", Establishment: "CARREFOUR", UnitPrice: 8.50, ObservedAt: day(1)},
		{SKU: "S", Establishment: "ASSAI", UnitPrice: 7.90, ObservedAt: day(1)},
		{SKU: "S", Establishment: "PAO", UnitPrice: 9.20, ObservedAt: day(1)},
	} {
		if _, err := svc.RecordObservation(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	best, err := svc.BestPrice(ctx, "S", nil)
	if err != nil {
		t.Fatal(err)
	}
	if best.Establishment != "ASSAI" || best.UnitPrice != 7.90 {
		t.Errorf("best = %s @ %.2f, want ASSAI @ 7.90", best.Establishment, best.UnitPrice)
	}
}

func TestBestPriceHonorsCandidateEstablishments(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, obs := range []Observation{
		{SKU: "S", Establishment: "CARREFOUR", UnitPrice: 8.50, ObservedAt: day(1)},
		{SKU: "S", Establishment: "ASSAI", UnitPrice: 7.90, ObservedAt: day(1)},
		{SKU: "S", Establishment: "PAO", UnitPrice: 9.20, ObservedAt: day(1)},
	} {
		if _, err := svc.RecordObservation(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	// ASSAI is cheapest overall but outside the caller's area.
	best, err := svc.BestPrice(ctx, "S", []string{"CARREFOUR", "PAO"})
	if err != nil {
		t.Fatal(err)
	}
	if best.Establishment != "CARREFOUR" || best.UnitPrice != 8.50 {
		t.Errorf("best = %s @ %.2f, want CARREFOUR @ 8.50", best.Establishment, best.UnitPrice)
	}

	if _, err := svc.BestPrice(ctx, "S", []string{"DIA"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for an area with no prices", err)
	}
}

func TestCompareBasketRanksCoverageBeforePrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Store A stocks both items; store B only one, cheaply.
	for _, obs := range []Observation{
		{SKU: "ARROZ", Establishment: "A", UnitPrice: 20, ObservedAt: day(1)},
		{SKU: "FEIJAO", Establishment: "A", UnitPrice: 9, ObservedAt: day(1)},
		{SKU: "ARROZ", Establishment: "B", UnitPrice: 5, ObservedAt: day(1)},
	} {
		if _, err := svc.RecordObservation(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := svc.CompareBasket(ctx, []string{"ARROZ", "FEIJAO"})
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("establishments = %d, want 2", len(totals))
	}
	if totals[0].Establishment != "A" {
		t.Errorf("first = %s, want A (full coverage)", totals[0].Establishment)
	}
	if totals[0].Total != 29 || totals[0].ItemsMissing != 0 {
		t.Errorf("A = %+v", totals[0])
	}
	if totals[1].ItemsMissing != 1 {
		t.Errorf("B missing = %d, want 1", totals[1].ItemsMissing)
	}
}

func TestRecipeCostWeightsQuantities(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, obs := range []Observation{
		{SKU: "ARROZ", Establishment: "A", UnitPrice: 6, ObservedAt: day(1)},
		{SKU: "OLEO", Establishment: "A", UnitPrice: 8, ObservedAt: day(1)},
	} {
		if _, err := svc.RecordObservation(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := svc.RecipeCost(ctx, []RecipeItem{
		{SKU: "ARROZ", Quantity: 2},
		{SKU: "OLEO", Quantity: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || totals[0].Total != 16 {
		t.Fatalf("totals = %+v, want one establishment at 16.00", totals)
	}
}

type staticHistory []ingest.ReceiptItem

func (h staticHistory) ListResolved(context.Context) ([]ingest.ReceiptItem, error) {
	return h, nil
}

func TestBackfillReplaysAndConverges(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	history := staticHistory{
		{Description: "ARROZ 5KG", Establishment: "A", ResolvedSKU: "ARROZ", Quantity: 1, UnitPrice: 10, TotalPrice: 10, PurchasedAt: day(1)},
		{Description: "ARROZ 5KG", Establishment: "A", ResolvedSKU: "ARROZ", Quantity: 1, UnitPrice: 12, TotalPrice: 12, PurchasedAt: day(5)},
		{Description: "ARROZ 5KG", Establishment: "A", ResolvedSKU: "ARROZ", Quantity: 1, UnitPrice: 8, TotalPrice: 8, PurchasedAt: day(3)},
		{Description: "QUEBRADO", Establishment: "A", ResolvedSKU: "X", PurchasedAt: day(1)}, // no price at all
	}

	first, err := svc.Backfill(ctx, history)
	if err != nil {
		t.Fatal(err)
	}
	if first.Replayed != 3 || first.Skipped != 1 {
		t.Errorf("first run = %+v", first)
	}

	price, err := repo.Get(ctx, "ARROZ", "A")
	if err != nil {
		t.Fatal(err)
	}
	if price.UnitPrice != 8 || !price.ObservedAt.Equal(day(3)) {
		t.Errorf("price = %.2f @ %v, want 8.00 @ Jan 3", price.UnitPrice, price.ObservedAt)
	}

	// A second replay changes nothing.
	second, err := svc.Backfill(ctx, history)
	if err != nil {
		t.Fatal(err)
	}
	if second.Applied != 0 {
		t.Errorf("second run applied %d rows", second.Applied)
	}
	again, _ := repo.Get(ctx, "ARROZ", "A")
	if *again != *price {
		t.Errorf("replay diverged: %+v vs %+v", again, price)
	}
}
