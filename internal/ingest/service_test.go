package ingest

import (
	"context"
	"testing"
	"time"
)

func validPayload() ReceiptPayload {
	return ReceiptPayload{
		ReceiptID:     "11111111-1111-1111-1111-111111111111",
		UserID:        "user-1",
		Establishment: "12345678000199",
		PurchasedAt:   time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC),
		Items: []RawItem{
			{Description: "ARROZ CAMIL 5KG", Quantity: 1, UnitPrice: 24.90, TotalPrice: 24.90, CategoryHint: "mercearia"},
		},
	}
}

func TestAcceptQueuesValidItems(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)

	result, err := svc.Accept(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if result.Enqueued != 1 || result.Quarantined != 0 {
		t.Fatalf("result = %+v", result)
	}

	pending, _ := repo.FetchPendingBatch(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].Status != StatusPending {
		t.Errorf("status = %s", pending[0].Status)
	}
}

func TestAcceptQuarantinesMalformedLines(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)

	payload := validPayload()
	payload.Items = append(payload.Items,
		RawItem{Description: "", UnitPrice: 1},
		RawItem{Description: "COCA COLA 2L", UnitPrice: -3},
		RawItem{Description: "SEM PRECO"},
	)

	result, err := svc.Accept(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if result.Enqueued != 1 || result.Quarantined != 3 {
		t.Fatalf("result = %+v", result)
	}

	// Quarantined lines are stored for audit but never picked up.
	pending, _ := repo.FetchPendingBatch(context.Background(), 10)
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1", len(pending))
	}
	counts, _ := repo.CountByStatus(context.Background())
	if counts[StatusQuarantined] != 3 {
		t.Errorf("quarantined = %d, want 3", counts[StatusQuarantined])
	}
}

func TestValidateReasons(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	purchased := now.Add(-time.Hour)

	cases := []struct {
		name string
		item RawItem
		at   time.Time
		want string
	}{
		{"ok", RawItem{Description: "X", UnitPrice: 1}, purchased, ""},
		{"empty description", RawItem{UnitPrice: 1}, purchased, "empty description"},
		{"negative price", RawItem{Description: "X", UnitPrice: -1}, purchased, "negative price"},
		{"no price", RawItem{Description: "X"}, purchased, "no price information"},
		{"negative quantity", RawItem{Description: "X", UnitPrice: 1, Quantity: -2}, purchased, "negative quantity"},
		{"zero time", RawItem{Description: "X", UnitPrice: 1}, time.Time{}, "missing purchase timestamp"},
		{"future", RawItem{Description: "X", UnitPrice: 1}, now.Add(48 * time.Hour), "purchase timestamp in the future"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.Validate(tc.at, now); got != tc.want {
				t.Errorf("Validate = %q, want %q", got, tc.want)
			}
		})
	}
}
