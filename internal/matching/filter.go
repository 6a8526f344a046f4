package matching

import (
	"math"
	"strings"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

// ProductFacts are the structural fields the business-rule filter compares.
// Zero values mean "not recorded" and never deny on their own.
type ProductFacts struct {
	Brand       string
	Category    string
	PackageQty  float64
	PackageUnit string
}

func Facts(p catalog.MasterProduct) ProductFacts {
	return ProductFacts{
		Brand:       p.Brand,
		Category:    p.Category,
		PackageQty:  p.PackageQty,
		PackageUnit: p.PackageUnit,
	}
}

// AllowMatch decides whether two products may be treated as the same
// entity, independent of any text-similarity score. Only explicit
// disagreement denies; missing data is permissive. Quantities are compared
// in base units, so 200ml vs 1l is a quantity mismatch, not a unit one.
func AllowMatch(a, b ProductFacts, quantityTolerance float64) bool {
	if a.PackageUnit != "" && b.PackageUnit != "" {
		qtyA, unitA := toBaseUnit(a.PackageQty, a.PackageUnit)
		qtyB, unitB := toBaseUnit(b.PackageQty, b.PackageUnit)

		if !strings.EqualFold(unitA, unitB) {
			return false
		}
		if qtyA > 0 && qtyB > 0 {
			if relativeDiff(qtyA, qtyB) > quantityTolerance {
				return false
			}
		}
	}

	if a.Brand != "" && b.Brand != "" && !strings.EqualFold(a.Brand, b.Brand) {
		return false
	}

	if a.Category != "" && b.Category != "" && !strings.EqualFold(a.Category, b.Category) {
		return false
	}

	return true
}

func toBaseUnit(qty float64, unit string) (float64, string) {
	switch strings.ToLower(unit) {
	case "ml":
		return qty / 1000, "l"
	case "g":
		return qty / 1000, "kg"
	default:
		return qty, strings.ToLower(unit)
	}
}

func relativeDiff(a, b float64) float64 {
	larger := math.Max(a, b)
	if larger == 0 {
		return 0
	}
	return math.Abs(a-b) / larger
}
