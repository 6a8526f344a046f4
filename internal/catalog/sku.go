package catalog

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var skuCleanRe = regexp.MustCompile(`[^A-Z0-9]+`)

// DeriveSKU builds the stable identifier for a master product. It is a pure
// function of (category, base name, brand, package unit), so re-creating
// the same product always yields the same SKU.
func DeriveSKU(category, baseName, brand, packageUnit string) string {
	parts := []string{category, baseName}
	if brand != "" {
		parts = append(parts, brand)
	}
	if packageUnit != "" {
		parts = append(parts, packageUnit)
	}

	slug := skuSlug(strings.Join(parts, " "))
	if len(slug) > 80 {
		slug = slug[:80]
		slug = strings.TrimRight(slug, "-")
	}

	// Hash over the delimited tuple so "marca|" and "|marca" never collide.
	h := fnv.New32a()
	h.Write([]byte(category + "|" + baseName + "|" + brand + "|" + packageUnit))

	return fmt.Sprintf("%s-%08X", slug, h.Sum32())
}

func skuSlug(s string) string {
	s = strings.ToUpper(s)
	s = skuCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
