package matching

import (
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

// NameRatio is a [0,1] lexical similarity between two canonical texts,
// derived from edit distance.
func NameRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)
	ratio := 1 - float64(distance)/float64(longest)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// StructuralScore compares two masters on name + brand + package, the same
// axes the business-rule filter checks. Components missing on either side
// drop out and the weights renormalize.
func StructuralScore(a, b catalog.MasterProduct, quantityTolerance float64) float64 {
	const (
		nameWeight    = 0.70
		brandWeight   = 0.15
		packageWeight = 0.15
	)

	score := nameWeight * NameRatio(a.BaseName, b.BaseName)
	total := nameWeight

	if a.Brand != "" && b.Brand != "" {
		total += brandWeight
		if strings.EqualFold(a.Brand, b.Brand) {
			score += brandWeight
		}
	}

	if a.PackageUnit != "" && b.PackageUnit != "" && a.PackageQty > 0 && b.PackageQty > 0 {
		total += packageWeight
		qtyA, unitA := toBaseUnit(a.PackageQty, a.PackageUnit)
		qtyB, unitB := toBaseUnit(b.PackageQty, b.PackageUnit)
		if unitA == unitB && relativeDiff(qtyA, qtyB) <= quantityTolerance {
			score += packageWeight
		}
	}

	return score / total
}

// PairCache memoizes pairwise comparisons within a run. Keys are order
// independent, so (a,b) and (b,a) always hit the same entry. The cache is
// bounded; when full it resets rather than growing without limit.
type PairCache struct {
	mu      sync.Mutex
	entries map[pairKey]float64
	maxSize int
}

type pairKey struct {
	lo, hi string
}

func NewPairCache(maxSize int) *PairCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &PairCache{
		entries: make(map[pairKey]float64),
		maxSize: maxSize,
	}
}

func (c *PairCache) key(a, b string) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

func (c *PairCache) Get(a, b string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[c.key(a, b)]
	return v, ok
}

func (c *PairCache) Put(a, b string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[pairKey]float64)
	}
	c.entries[c.key(a, b)] = score
}

