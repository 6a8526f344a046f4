package canonical

import (
	"regexp"
	"strconv"
	"strings"
)

// Repack is the result of multi-unit pack detection. UnitPrice is the true
// per-unit price when IsMultiUnit is set, otherwise the input price.
type Repack struct {
	IsMultiUnit bool
	PackCount   int
	UnitPrice   float64
}

// repackCategories are sold both as single units and as multi-unit packs
// priced as one line item.
var repackCategories = map[string]bool{
	"ovos": true,
}

var eggKeywordRe = regexp.MustCompile(`(?i)\bovos?\b`)

var packCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bc\s*/\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bbandeja\s+c?/?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bcartela\s+c?/?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*un(?:id(?:ade)?s?)?\b`),
}

var dozenRe = regexp.MustCompile(`(?i)\b(?:duzia|dz)\b`)

// IsRepackCategory reports whether a category is subject to pack detection.
func IsRepackCategory(category string) bool {
	return repackCategories[strings.ToLower(category)]
}

// DetectRepack inspects a display text and total line price for a pack-size
// marker. It only fires for repack-prone products (category or egg keyword
// in the text); everything else passes through unchanged.
func DetectRepack(description, category string, totalPrice float64, minCount, maxCount int) Repack {
	passthrough := Repack{UnitPrice: totalPrice}

	if !IsRepackCategory(category) && !eggKeywordRe.MatchString(description) {
		return passthrough
	}
	if totalPrice <= 0 {
		return passthrough
	}

	count := 0
	for _, pattern := range packCountPatterns {
		if m := pattern.FindStringSubmatch(description); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				count = n
				break
			}
		}
	}
	if count == 0 && dozenRe.MatchString(description) {
		count = 12
	}

	if count < minCount || count > maxCount {
		return passthrough
	}

	return Repack{
		IsMultiUnit: true,
		PackCount:   count,
		UnitPrice:   totalPrice / float64(count),
	}
}
