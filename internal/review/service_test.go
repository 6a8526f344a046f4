package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/config"
	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
)

type fixture struct {
	service    *Service
	repo       *InMemoryRepository
	normalizer *normalize.Service
	synonyms   *normalize.InMemoryRepository
	products   *catalog.InMemoryRepository
	queue      *ingest.InMemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	synonyms := normalize.NewInMemoryRepository()
	products := catalog.NewInMemoryRepository()
	repo := NewInMemoryRepository()
	queue := ingest.NewInMemoryRepository()

	thresholds := config.Thresholds{
		Auto:                  0.90,
		Review:                0.75,
		ProvisionalConfidence: 0.50,
		SimilarityFloor:       0.30,
	}
	cascade := matching.NewCascade(synonyms, products, normalize.NewMemoryFuzzySource(products), nil, 0.30)
	normalizer := normalize.NewService(synonyms, products, cascade, repo, nil, thresholds, 0.15)

	return &fixture{
		service:    NewService(repo, normalizer, queue),
		repo:       repo,
		normalizer: normalizer,
		synonyms:   synonyms,
		products:   products,
		queue:      queue,
	}
}

// openProposal drives a mid-band text through normalization so a real
// proposal with real candidates ends up in the queue.
func (f *fixture) openProposal(t *testing.T) (string, string) {
	t.Helper()

	sku := catalog.DeriveSKU("mercearia", "arroz camil", "Camil", "")
	err := f.products.Create(context.Background(), &catalog.MasterProduct{
		SKU:      sku,
		BaseName: "arroz camil",
		Brand:    "Camil",
		Category: "mercearia",
		Status:   catalog.StatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}

	decision, err := f.normalizer.NormalizeText(context.Background(), "ARROZ CAMIL B", "mercearia", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != normalize.OutcomePendingReview {
		t.Fatalf("setup produced %s, want %s", decision.Outcome, normalize.OutcomePendingReview)
	}
	return decision.ProposalID, sku
}

func TestApproveBindsAtFullConfidence(t *testing.T) {
	f := newFixture(t)
	id, sku := f.openProposal(t)

	proposal, err := f.service.Approve(context.Background(), id, sku, "operator-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if proposal.Status != StatusApproved || proposal.ChosenSKU != sku {
		t.Errorf("proposal = %s/%s, want %s/%s", proposal.Status, proposal.ChosenSKU, StatusApproved, sku)
	}

	syn, err := f.synonyms.GetByRawText(context.Background(), "ARROZ CAMIL B")
	if err != nil {
		t.Fatalf("synonym missing: %v", err)
	}
	if syn.Confidence != 1.0 {
		t.Errorf("confidence = %.2f, want 1.0", syn.Confidence)
	}

	product, _ := f.products.GetBySKU(context.Background(), sku)
	if product.ReceiptCount != 1 {
		t.Errorf("receipt count = %d, want 1", product.ReceiptCount)
	}
}

func TestApproveRejectsUnknownCandidate(t *testing.T) {
	f := newFixture(t)
	id, _ := f.openProposal(t)

	_, err := f.service.Approve(context.Background(), id, "SOME-OTHER-SKU", "operator-1")
	if !errors.Is(err, ErrUnknownCandidate) {
		t.Fatalf("err = %v, want ErrUnknownCandidate", err)
	}
}

func TestResolutionIsTerminal(t *testing.T) {
	f := newFixture(t)
	id, sku := f.openProposal(t)

	if _, err := f.service.Approve(context.Background(), id, sku, "operator-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Reject(context.Background(), id); !errors.Is(err, ErrResolved) {
		t.Fatalf("second verdict err = %v, want ErrResolved", err)
	}
}

func TestRejectLeavesTextUnbound(t *testing.T) {
	f := newFixture(t)
	id, _ := f.openProposal(t)

	proposal, err := f.service.Reject(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if proposal.Status != StatusRejected {
		t.Errorf("status = %s, want %s", proposal.Status, StatusRejected)
	}

	if _, err := f.synonyms.GetByRawText(context.Background(), "ARROZ CAMIL B"); err == nil {
		t.Error("rejected proposal left a synonym behind")
	}

	// A later receipt with the same text may open a fresh proposal.
	decision, err := f.normalizer.NormalizeText(context.Background(), "ARROZ CAMIL B", "mercearia", "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != normalize.OutcomePendingReview || decision.Reused {
		t.Errorf("re-proposal = %s reused=%v, want fresh %s", decision.Outcome, decision.Reused, normalize.OutcomePendingReview)
	}
}

func TestApproveReleasesHeldReceiptItems(t *testing.T) {
	f := newFixture(t)
	id, sku := f.openProposal(t)

	prices := pricing.NewInMemoryRepository()
	priceSvc := pricing.NewService(prices, 6, 100)
	worker := normalize.NewWorker(f.queue, f.normalizer, priceSvc, 50)

	// The same text arrives on a receipt while the proposal is open: the
	// worker parks the item and its price goes nowhere yet.
	intake := ingest.NewService(f.queue)
	_, err := intake.Accept(context.Background(), ingest.ReceiptPayload{
		ReceiptID:     "44444444-4444-4444-4444-444444444444",
		UserID:        "user-1",
		Establishment: "12345678000199",
		PurchasedAt:   time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC),
		Items: []ingest.RawItem{
			{Description: "ARROZ CAMIL B", Quantity: 1, UnitPrice: 25.90, TotalPrice: 25.90, CategoryHint: "mercearia"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worker.ProcessBatch(context.Background()); err != nil {
		t.Fatal(err)
	}
	counts, _ := f.queue.CountByStatus(context.Background())
	if counts[ingest.StatusPendingReview] != 1 {
		t.Fatalf("statuses = %v, want one item held for review", counts)
	}

	if _, err := f.service.Approve(context.Background(), id, sku, "operator-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Approval puts the held item back on the queue.
	counts, _ = f.queue.CountByStatus(context.Background())
	if counts[ingest.StatusPending] != 1 {
		t.Fatalf("statuses = %v, want the held item requeued", counts)
	}

	// The next pass resolves it through the new synonym and the price
	// finally reaches the store.
	if _, err := worker.ProcessBatch(context.Background()); err != nil {
		t.Fatal(err)
	}
	counts, _ = f.queue.CountByStatus(context.Background())
	if counts[ingest.StatusNormalized] != 1 {
		t.Fatalf("statuses = %v, want the item normalized", counts)
	}

	price, err := prices.Get(context.Background(), sku, "12345678000199")
	if err != nil {
		t.Fatalf("price missing after approval: %v", err)
	}
	if price.UnitPrice != 25.90 {
		t.Errorf("unit price = %.2f, want 25.90", price.UnitPrice)
	}
}

func TestCreateNewReleasesHeldReceiptItems(t *testing.T) {
	f := newFixture(t)
	id, _ := f.openProposal(t)

	if err := f.queue.EnqueueBatch(context.Background(), []ingest.ReceiptItem{{
		ID:            "item-1",
		ReceiptID:     "55555555-5555-5555-5555-555555555555",
		UserID:        "user-1",
		Establishment: "12345678000199",
		Description:   "ARROZ CAMIL B",
		Quantity:      1,
		UnitPrice:     25.90,
		TotalPrice:    25.90,
		PurchasedAt:   time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC),
		Status:        ingest.StatusPendingReview,
	}}); err != nil {
		t.Fatal(err)
	}

	spec := &normalize.NewProductSpec{
		DisplayName: "ARROZ CAMIL BRANCO",
		BaseName:    "arroz branco",
		Brand:       "Camil",
		Category:    "mercearia",
	}
	if _, err := f.service.CreateNew(context.Background(), id, "operator-1", spec); err != nil {
		t.Fatal(err)
	}

	counts, _ := f.queue.CountByStatus(context.Background())
	if counts[ingest.StatusPending] != 1 {
		t.Fatalf("statuses = %v, want the held item requeued", counts)
	}
}

func TestCreateNewMintsConfirmedProduct(t *testing.T) {
	f := newFixture(t)
	id, _ := f.openProposal(t)

	spec := &normalize.NewProductSpec{
		DisplayName: "ARROZ CAMIL BRANCO",
		BaseName:    "arroz branco",
		Brand:       "Camil",
		Category:    "mercearia",
	}
	proposal, err := f.service.CreateNew(context.Background(), id, "operator-1", spec)
	if err != nil {
		t.Fatalf("create new: %v", err)
	}
	if proposal.Status != StatusCreatedNew || proposal.ChosenSKU == "" {
		t.Fatalf("proposal = %s/%s", proposal.Status, proposal.ChosenSKU)
	}

	product, err := f.products.GetBySKU(context.Background(), proposal.ChosenSKU)
	if err != nil {
		t.Fatal(err)
	}
	if product.Provisional {
		t.Error("operator-created product flagged provisional")
	}

	syn, err := f.synonyms.GetByRawText(context.Background(), "ARROZ CAMIL B")
	if err != nil {
		t.Fatal(err)
	}
	if syn.Confidence != 1.0 || syn.SKU != proposal.ChosenSKU {
		t.Errorf("synonym = %.2f/%s", syn.Confidence, syn.SKU)
	}
}
