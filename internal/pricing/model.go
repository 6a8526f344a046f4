package pricing

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("no current price")
	ErrInvalidObservation = errors.New("invalid price observation")
)

// Observation is one unit price seen for a product at an establishment.
type Observation struct {
	SKU           string    `json:"sku"`
	Establishment string    `json:"establishment"`
	UnitPrice     float64   `json:"unit_price"`
	ObservedAt    time.Time `json:"observed_at"`
}

// CurrentPrice is the single price kept per (product, establishment).
type CurrentPrice struct {
	SKU           string    `json:"sku"`
	Establishment string    `json:"establishment"`
	UnitPrice     float64   `json:"unit_price"`
	ObservedAt    time.Time `json:"observed_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (o Observation) validate() error {
	if o.SKU == "" || o.Establishment == "" || o.UnitPrice <= 0 || o.ObservedAt.IsZero() {
		return ErrInvalidObservation
	}
	return nil
}
