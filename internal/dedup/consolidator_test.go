package dedup

import (
	"context"
	"testing"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

func seed(t *testing.T, repo *catalog.InMemoryRepository, sku, baseName, brand, category string, qty float64, unit string, receipts int) {
	t.Helper()

	err := repo.Create(context.Background(), &catalog.MasterProduct{
		SKU:          sku,
		DisplayName:  baseName,
		BaseName:     baseName,
		Brand:        brand,
		Category:     category,
		PackageQty:   qty,
		PackageUnit:  unit,
		ReceiptCount: receipts,
		Status:       catalog.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", sku, err)
	}
}

func newConsolidator(products *catalog.InMemoryRepository, pairs PairRepository, maxComparisons int) *Consolidator {
	return NewConsolidator(products, pairs, 0.85, 0.15, maxComparisons)
}

func TestScanClustersNearIdenticalProducts(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	seed(t, products, "CAFE-1", "cafe pilao", "Pilão", "mercearia", 500, "g", 10)
	seed(t, products, "CAFE-2", "cafe pilao t", "Pilão", "mercearia", 500, "g", 2)
	seed(t, products, "ACUCAR-1", "acucar uniao", "União", "mercearia", 1, "kg", 5)

	report, err := newConsolidator(products, NewInMemoryPairRepository(), 5000).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(report.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(report.Clusters))
	}
	cluster := report.Clusters[0]
	if cluster.Primary.SKU != "CAFE-1" {
		t.Errorf("primary = %s, want CAFE-1 (most receipts)", cluster.Primary.SKU)
	}
	if len(cluster.Duplicates) != 1 || cluster.Duplicates[0].SKU != "CAFE-2" {
		t.Errorf("duplicates = %+v", cluster.Duplicates)
	}
	if cluster.AvgScore < 0.85 {
		t.Errorf("avg score = %.3f, want >= 0.85", cluster.AvgScore)
	}
}

func TestScanNeverComparesAcrossCategories(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	seed(t, products, "A-1", "agua mineral", "", "bebidas", 0, "", 1)
	seed(t, products, "A-2", "agua mineral", "", "limpeza", 0, "", 1)

	report, err := newConsolidator(products, NewInMemoryPairRepository(), 5000).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Clusters) != 0 {
		t.Errorf("clusters across categories: %+v", report.Clusters)
	}
	if report.Comparisons != 0 {
		t.Errorf("comparisons = %d, want 0", report.Comparisons)
	}
}

func TestScanSkipsIgnoredPairs(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	seed(t, products, "CAFE-1", "cafe pilao", "Pilão", "mercearia", 500, "g", 10)
	seed(t, products, "CAFE-2", "cafe pilao t", "Pilão", "mercearia", 500, "g", 2)

	pairs := NewInMemoryPairRepository()
	if err := pairs.Ignore(context.Background(), "CAFE-2", "CAFE-1"); err != nil {
		t.Fatal(err)
	}

	report, err := newConsolidator(products, pairs, 5000).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Clusters) != 0 {
		t.Errorf("ignored pair still clustered: %+v", report.Clusters)
	}
}

func TestScanBrandDisagreementVetoesPair(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	seed(t, products, "LEITE-1", "leite integral", "Italac", "laticinios", 1, "l", 3)
	seed(t, products, "LEITE-2", "leite integral", "Piracanjuba", "laticinios", 1, "l", 3)

	report, err := newConsolidator(products, NewInMemoryPairRepository(), 5000).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Clusters) != 0 {
		t.Errorf("different brands clustered: %+v", report.Clusters)
	}
}

func TestScanStopsAtComparisonCap(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	seed(t, products, "P-1", "sabao em po", "OMO", "limpeza", 1, "kg", 1)
	seed(t, products, "P-2", "sabao em po x", "OMO", "limpeza", 1, "kg", 1)
	seed(t, products, "P-3", "sabao em po y", "OMO", "limpeza", 1, "kg", 1)

	report, err := newConsolidator(products, NewInMemoryPairRepository(), 1).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !report.CapReached {
		t.Error("cap not reported")
	}
	if report.Comparisons != 1 {
		t.Errorf("comparisons = %d, want 1", report.Comparisons)
	}
}

func TestScanClustersTransitively(t *testing.T) {
	products := catalog.NewInMemoryRepository()
	// A~B and B~C should land in one cluster even if A~C scores lower.
	seed(t, products, "T-1", "detergente ype neutro", "Ypê", "limpeza", 500, "ml", 5)
	seed(t, products, "T-2", "detergente ype neutroo", "Ypê", "limpeza", 500, "ml", 4)
	seed(t, products, "T-3", "detergente ype neutrooo", "Ypê", "limpeza", 500, "ml", 3)

	report, err := newConsolidator(products, NewInMemoryPairRepository(), 5000).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(report.Clusters))
	}
	if got := len(report.Clusters[0].Duplicates); got != 2 {
		t.Errorf("cluster size = %d members beyond primary, want 2", got)
	}
}
