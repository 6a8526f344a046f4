package normalize

import (
	"context"
	"log"
	"time"

	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
)

// Worker drains the receipt-item queue: each pending item is normalized,
// its status updated, and resolved items feed the price store.
type Worker struct {
	queue      ingest.Repository
	normalizer *Service
	prices     *pricing.Service
	batchSize  int
}

func NewWorker(queue ingest.Repository, normalizer *Service, prices *pricing.Service, batchSize int) *Worker {
	return &Worker{
		queue:      queue,
		normalizer: normalizer,
		prices:     prices,
		batchSize:  batchSize,
	}
}

// Run processes batches until the context is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[WORKER] stopping")
			return
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				log.Printf("⚠️  batch error: %v", err)
			}
		}
	}
}

// ProcessBatch handles up to batchSize pending items. A failing item is
// marked FAILED and never blocks the rest of the batch.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	items, err := w.queue.FetchPendingBatch(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	// An empty queue is not an error.
	if len(items) == 0 {
		return 0, nil
	}

	processed := 0
	for _, item := range items {
		w.processOne(ctx, item)
		processed++
	}
	log.Printf("[WORKER] processed %d items", processed)
	return processed, nil
}

func (w *Worker) processOne(ctx context.Context, item ingest.ReceiptItem) {
	decision, err := w.normalizer.NormalizeText(ctx, item.Description, item.CategoryHint, item.UserID)
	if err != nil {
		log.Printf("[WORKER] item %s failed: %v", item.ID, err)
		_ = w.queue.MarkFailed(ctx, item.ID, err.Error())
		return
	}

	if decision.Outcome == OutcomePendingReview {
		_ = w.queue.MarkPendingReview(ctx, item.ID)
		return
	}

	if err := w.queue.MarkNormalized(ctx, item.ID, decision.SKU); err != nil {
		log.Printf("[WORKER] marking item %s failed: %v", item.ID, err)
		return
	}

	// Price recording is best effort; the binding already happened.
	item.ResolvedSKU = decision.SKU
	if obs, ok := w.prices.ObservationForItem(item); ok {
		if _, err := w.prices.RecordObservation(ctx, obs); err != nil {
			log.Printf("[WORKER] price for item %s not recorded: %v", item.ID, err)
		}
	}
}
