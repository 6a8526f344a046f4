package dedup

import "context"

// PairRepository remembers operator verdicts that two products are NOT
// duplicates, so scans never resurface them.
type PairRepository interface {
	Ignore(ctx context.Context, skuA, skuB string) error
	IsIgnored(ctx context.Context, skuA, skuB string) (bool, error)
	ListIgnored(ctx context.Context) ([][2]string, error)
}
