package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

type fakeSynonyms struct {
	hits []SynonymHit
}

func (f *fakeSynonyms) Lookup(_ context.Context, _, _ string) ([]SynonymHit, error) {
	return f.hits, nil
}

type fakeFuzzy struct {
	hits []ScoredSKU
	err  error
}

func (f *fakeFuzzy) Similar(_ context.Context, _ string, floor float64, _ int) ([]ScoredSKU, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []ScoredSKU
	for _, h := range f.hits {
		if h.Score >= floor {
			out = append(out, h)
		}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("rate limited")
}

type fixedEmbedder struct {
	vector []float32
}

func (f fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vector, nil
}

func seedProduct(t *testing.T, repo *catalog.InMemoryRepository, sku, baseName string, emb []float32) {
	t.Helper()
	err := repo.Create(context.Background(), &catalog.MasterProduct{
		SKU:         sku,
		DisplayName: baseName,
		BaseName:    baseName,
		Category:    "laticinios",
		Embedding:   emb,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCascadeShortCircuitsOnStrongSynonym(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	seedProduct(t, repo, "SKU-A", "leite italac", nil)
	seedProduct(t, repo, "SKU-B", "leite piracanjuba", nil)

	cascade := NewCascade(
		&fakeSynonyms{hits: []SynonymHit{{SKU: "SKU-A", Confidence: 1.0}}},
		repo,
		&fakeFuzzy{hits: []ScoredSKU{{SKU: "SKU-B", Score: 0.9}}},
		failingEmbedder{}, // would error if consulted after short-circuit
		0.3,
	)

	candidates, err := cascade.Retrieve(context.Background(), "LEITE ITALAC 1L", "leite italac", 0.90)
	if err != nil {
		t.Fatal(err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected synonym-only result, got %d candidates", len(candidates))
	}
	if candidates[0].Product.SKU != "SKU-A" || candidates[0].Strategy != StrategySynonym {
		t.Fatalf("unexpected top candidate: %+v", candidates[0])
	}
}

func TestCascadeDegradesWhenEmbeddingFails(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	seedProduct(t, repo, "SKU-B", "leite piracanjuba", nil)

	cascade := NewCascade(
		&fakeSynonyms{},
		repo,
		&fakeFuzzy{hits: []ScoredSKU{{SKU: "SKU-B", Score: 0.82}}},
		failingEmbedder{},
		0.3,
	)

	candidates, err := cascade.Retrieve(context.Background(), "LEITE PIRACANJUBA", "leite piracanjuba", 0.90)
	if err != nil {
		t.Fatal(err)
	}

	if len(candidates) != 1 || candidates[0].Strategy != StrategyFuzzy {
		t.Fatalf("expected fuzzy fallback candidate, got %+v", candidates)
	}
}

func TestCascadeMergesKeepingMaxScorePerProduct(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	seedProduct(t, repo, "SKU-A", "leite italac", []float32{1, 0})
	seedProduct(t, repo, "SKU-B", "leite piracanjuba", []float32{0, 1})

	cascade := NewCascade(
		&fakeSynonyms{hits: []SynonymHit{{SKU: "SKU-A", Confidence: 0.5}}},
		repo,
		&fakeFuzzy{hits: []ScoredSKU{{SKU: "SKU-A", Score: 0.8}, {SKU: "SKU-B", Score: 0.4}}},
		fixedEmbedder{vector: []float32{1, 0}}, // cosine 1.0 with SKU-A
		0.3,
	)

	candidates, err := cascade.Retrieve(context.Background(), "leite", "leite", 0.90)
	if err != nil {
		t.Fatal(err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 merged candidates, got %d", len(candidates))
	}
	if candidates[0].Product.SKU != "SKU-A" || candidates[0].Score != 1.0 {
		t.Fatalf("expected SKU-A at max score 1.0, got %+v", candidates[0])
	}
	if candidates[0].Strategy != StrategyEmbedding {
		t.Fatalf("max score should come from embedding, got %s", candidates[0].Strategy)
	}
}

func TestCascadeAppliesSimilarityFloor(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	seedProduct(t, repo, "SKU-B", "sabao em po", nil)

	cascade := NewCascade(
		&fakeSynonyms{},
		repo,
		&fakeFuzzy{hits: []ScoredSKU{{SKU: "SKU-B", Score: 0.1}}},
		nil,
		0.3,
	)

	candidates, err := cascade.Retrieve(context.Background(), "leite", "leite", 0.90)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 0 {
		t.Fatalf("candidates below the floor must be excluded, got %+v", candidates)
	}
}
