package catalog

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var ErrNotFound = errors.New("master product not found")

// MasterProduct is a canonical catalog entry representing one real-world
// product variant.
type MasterProduct struct {
	SKU          string    `json:"sku"`
	DisplayName  string    `json:"display_name"`
	BaseName     string    `json:"base_name"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category"`
	PackageType  string    `json:"package_type,omitempty"`
	PackageQty   float64   `json:"package_qty,omitempty"`
	PackageUnit  string    `json:"package_unit,omitempty"`
	IsBulk       bool      `json:"is_bulk"`
	Provisional  bool      `json:"provisional"`
	Status       string    `json:"status"`
	ReceiptCount int       `json:"receipt_count"`
	UserCount    int       `json:"user_count"`
	Embedding    []float32 `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// validCategories is the fixed category enumeration. Unknown hints fall
// back to "outros".
var validCategories = map[string]bool{
	"acougue":    true,
	"bebidas":    true,
	"congelados": true,
	"higiene":    true,
	"hortifruti": true,
	"laticinios": true,
	"limpeza":    true,
	"mercearia":  true,
	"ovos":       true,
	"padaria":    true,
	"pet":        true,
	"outros":     true,
}

const CategoryDefault = "outros"

// NormalizeCategory maps a free-form category hint onto the enumeration.
func NormalizeCategory(hint string) string {
	c := strings.ToLower(strings.TrimSpace(hint))
	if validCategories[c] {
		return c
	}
	return CategoryDefault
}

func IsValidCategory(category string) bool {
	return validCategories[strings.ToLower(category)]
}
