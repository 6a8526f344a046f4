package dedup

import (
	"context"
	"log"
	"sort"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// Consolidator scans the active catalog for masters that describe the same
// real product. Products are only ever compared within their category, and
// pairs the business-rule filter vetoes are never scored.
type Consolidator struct {
	products catalog.Repository
	pairs    PairRepository
	cache    *matching.PairCache

	threshold         float64
	quantityTolerance float64
	maxComparisons    int
}

func NewConsolidator(
	products catalog.Repository,
	pairs PairRepository,
	threshold float64,
	quantityTolerance float64,
	maxComparisons int,
) *Consolidator {
	return &Consolidator{
		products:          products,
		pairs:             pairs,
		cache:             matching.NewPairCache(0),
		threshold:         threshold,
		quantityTolerance: quantityTolerance,
		maxComparisons:    maxComparisons,
	}
}

// Scan compares products pairwise per category and clusters transitive
// matches. When the comparison budget runs out the partial result is
// returned with CapReached set, never an error.
func (c *Consolidator) Scan(ctx context.Context) (*Report, error) {
	active, err := c.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ignored, err := c.ignoredSet(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]catalog.MasterProduct)
	for _, p := range active {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	report := &Report{}
	uf := newUnionFind()
	pairScores := make(map[[2]string]float64)
	products := make(map[string]catalog.MasterProduct, len(active))
	for _, p := range active {
		products[p.SKU] = p
	}

scan:
	for _, cat := range categories {
		group := byCategory[cat]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if report.Comparisons >= c.maxComparisons {
					report.CapReached = true
					break scan
				}

				a, b := group[i], group[j]
				key := [2]string{a.SKU, b.SKU}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				if ignored[key] {
					continue
				}
				if !matching.AllowMatch(matching.Facts(a), matching.Facts(b), c.quantityTolerance) {
					continue
				}

				report.Comparisons++
				score, ok := c.cache.Get(a.SKU, b.SKU)
				if !ok {
					score = matching.StructuralScore(a, b, c.quantityTolerance)
					c.cache.Put(a.SKU, b.SKU, score)
				}

				if score >= c.threshold {
					uf.union(a.SKU, b.SKU)
					pairScores[key] = score
				}
			}
		}
	}

	report.Clusters = buildClusters(uf, products, pairScores)
	log.Printf("[DEDUP] scan done: %d comparisons, %d clusters, cap=%v",
		report.Comparisons, len(report.Clusters), report.CapReached)
	return report, nil
}

func (c *Consolidator) ignoredSet(ctx context.Context) (map[[2]string]bool, error) {
	pairs, err := c.pairs.ListIgnored(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[[2]string]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return set, nil
}

func buildClusters(uf *unionFind, products map[string]catalog.MasterProduct, pairScores map[[2]string]float64) []Cluster {
	groups := make(map[string][]string)
	for sku := range uf.parent {
		root := uf.find(sku)
		groups[root] = append(groups[root], sku)
	}

	var clusters []Cluster
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}

		sorted := make([]catalog.MasterProduct, 0, len(members))
		for _, sku := range members {
			sorted = append(sorted, products[sku])
		}
		// Primary: most receipts, then earliest creation.
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].ReceiptCount != sorted[j].ReceiptCount {
				return sorted[i].ReceiptCount > sorted[j].ReceiptCount
			}
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})

		// Average over the pairs that actually scored above the
		// threshold, not every possible member pair.
		total, n := 0.0, 0
		for key, score := range pairScores {
			if uf.find(key[0]) == uf.find(sorted[0].SKU) {
				total += score
				n++
			}
		}
		avg := 0.0
		if n > 0 {
			avg = total / float64(n)
		}

		clusters = append(clusters, Cluster{
			Primary:    sorted[0],
			Duplicates: sorted[1:],
			AvgScore:   avg,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].AvgScore != clusters[j].AvgScore {
			return clusters[i].AvgScore > clusters[j].AvgScore
		}
		return clusters[i].Primary.SKU < clusters[j].Primary.SKU
	})
	return clusters
}

// unionFind with path compression; sizes stay small enough that rank
// tracking is not worth it.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if p == x {
		return x
	}
	root := u.find(p)
	u.parent[x] = root
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
