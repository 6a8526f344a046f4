package dedup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
)

var (
	ErrSameProduct      = errors.New("primary and duplicate are the same product")
	ErrCategoryMismatch = errors.New("products belong to different categories")
)

// Service runs consolidation scans and executes operator verdicts.
type Service struct {
	consolidator *Consolidator
	products     catalog.Repository
	pairs        PairRepository
	synonyms     normalize.SynonymRepository
	prices       pricing.Repository
}

func NewService(
	consolidator *Consolidator,
	products catalog.Repository,
	pairs PairRepository,
	synonyms normalize.SynonymRepository,
	prices pricing.Repository,
) *Service {
	return &Service{
		consolidator: consolidator,
		products:     products,
		pairs:        pairs,
		synonyms:     synonyms,
		prices:       prices,
	}
}

func (s *Service) Scan(ctx context.Context) (*Report, error) {
	return s.consolidator.Scan(ctx)
}

// Merge folds a duplicate into the surviving primary: synonyms repoint,
// prices move under the replacement rule, counters are absorbed and the
// duplicate is deactivated. Re-running a finished merge is a no-op apart
// from the deactivation check.
func (s *Service) Merge(ctx context.Context, primarySKU, duplicateSKU string) error {
	if primarySKU == duplicateSKU {
		return ErrSameProduct
	}

	primary, err := s.products.GetBySKU(ctx, primarySKU)
	if err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	duplicate, err := s.products.GetBySKU(ctx, duplicateSKU)
	if err != nil {
		return fmt.Errorf("duplicate: %w", err)
	}
	if primary.Category != duplicate.Category {
		return ErrCategoryMismatch
	}

	if err := s.synonyms.ReassignSKU(ctx, duplicateSKU, primarySKU); err != nil {
		return fmt.Errorf("reassign synonyms: %w", err)
	}
	if err := s.prices.ReassignSKU(ctx, duplicateSKU, primarySKU); err != nil {
		return fmt.Errorf("reassign prices: %w", err)
	}
	if err := s.products.AbsorbCounters(ctx, duplicateSKU, primarySKU); err != nil {
		return fmt.Errorf("absorb counters: %w", err)
	}
	if err := s.products.Deactivate(ctx, duplicateSKU); err != nil {
		return fmt.Errorf("deactivate duplicate: %w", err)
	}

	log.Printf("[DEDUP] merged %s into %s", duplicateSKU, primarySKU)
	return nil
}

// Ignore records that a pair is not a duplicate despite its score.
func (s *Service) Ignore(ctx context.Context, skuA, skuB string) error {
	if skuA == skuB {
		return ErrSameProduct
	}
	if _, err := s.products.GetBySKU(ctx, skuA); err != nil {
		return err
	}
	if _, err := s.products.GetBySKU(ctx, skuB); err != nil {
		return err
	}
	return s.pairs.Ignore(ctx, skuA, skuB)
}
