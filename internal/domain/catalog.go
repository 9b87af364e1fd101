package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type ProductType string

const (
	ProductSimple       ProductType = "simple"
	ProductConfigurable ProductType = "configurable"
	ProductVariant      ProductType = "variant"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductSimple, ProductConfigurable, ProductVariant:
		return true
	}
	return false
}

// Product prices are stored in the reference currency. A variant points
// at its configurable parent (single level) but carries its own price.
type Product struct {
	ID            string          `db:"id"`
	CategoryID    string          `db:"category_id"`
	ParentID      string          `db:"parent_id"`
	Type          ProductType     `db:"type"`
	Name          string          `db:"name"`
	SKU           string          `db:"sku"`
	EAN           string          `db:"ean"`
	Price         decimal.Decimal `db:"price"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	VATPercent    decimal.Decimal `db:"vat_percent"`
	Active        bool            `db:"active"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

// CustomerGroup is a pricing segment. VATExempt marks B2B groups whose
// orders are written with VAT forced to zero.
type CustomerGroup struct {
	ID        string `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	VATExempt bool   `db:"vat_exempt"`
}

// GroupPrice is one step of a (product, group) quantity price break.
// Rows for the same pair form a step function keyed by ascending
// MinQuantity.
type GroupPrice struct {
	ProductID   string          `db:"product_id"`
	GroupID     string          `db:"group_id"`
	MinQuantity int             `db:"min_quantity"`
	Price       decimal.Decimal `db:"price"`
}

// Currency rate is reference-currency units per 1 unit of Code, so
// converting reference to transaction currency divides by the rate.
// The reference currency itself carries rate 1.0000.
type Currency struct {
	Code string          `db:"code"`
	Rate decimal.Decimal `db:"rate"`
}
