package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusAwaitingPayment OrderStatus = "awaiting_payment"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusProcessing      OrderStatus = "processing"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRefunded        OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAwaitingPayment, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// History action tags. The payload shape differs per action, which is
// why the payload column stays opaque JSON.
type HistoryAction string

const (
	ActionOrderCreated    HistoryAction = "order_created"
	ActionStatusChanged   HistoryAction = "status_changed"
	ActionPaymentReceived HistoryAction = "payment_received"
	ActionPaymentReversed HistoryAction = "payment_reversed"
	ActionOrderCancelled  HistoryAction = "order_cancelled"
)

// Order is the transaction header. Currency code, exchange rate and all
// totals are captured at creation and never recomputed from the live
// catalog. ExchangeRate is reference-currency units per 1 transaction
// unit (reference currency: 1.0000).
type Order struct {
	ID              string          `db:"id"`
	CustomerID      string          `db:"customer_id"`
	Status          OrderStatus     `db:"status"`
	CurrencyCode    string          `db:"currency_code"`
	ExchangeRate    decimal.Decimal `db:"exchange_rate"`
	VATRateApplied  decimal.Decimal `db:"vat_rate_applied"`
	IsVATExempt     bool            `db:"is_vat_exempt"`
	TotalExclVAT    decimal.Decimal `db:"total_excl_vat"`
	TotalInclVAT    decimal.Decimal `db:"total_incl_vat"`
	TotalExclVATRef decimal.Decimal `db:"total_excl_vat_ref"`
	TotalInclVATRef decimal.Decimal `db:"total_incl_vat_ref"`
	IsPaid          bool            `db:"is_paid"`
	PaidAt          string          `db:"paid_at"`
	CreatedAt       string          `db:"created_at"`
}

// OrderProduct is a frozen line item. Name/SKU/EAN and every monetary
// field are copied or derived once at checkout; ProductID is kept only
// as provenance and is never followed for display.
type OrderProduct struct {
	ID                  string          `db:"id"`
	OrderID             string          `db:"order_id"`
	ProductID           string          `db:"product_id"`
	Name                string          `db:"name"`
	SKU                 string          `db:"sku"`
	EAN                 string          `db:"ean"`
	Quantity            int             `db:"quantity"`
	UnitPrice           decimal.Decimal `db:"unit_price"`
	UnitPriceExclVAT    decimal.Decimal `db:"unit_price_excl_vat"`
	UnitPriceRef        decimal.Decimal `db:"unit_price_ref"`
	UnitPriceExclVATRef decimal.Decimal `db:"unit_price_excl_vat_ref"`
	PurchasePriceRef    decimal.Decimal `db:"purchase_price_ref"`
	VATPercent          decimal.Decimal `db:"vat_percent"`
	ExchangeRate        decimal.Decimal `db:"exchange_rate"`
	TotalExclVAT        decimal.Decimal `db:"total_excl_vat"`
	TotalInclVAT        decimal.Decimal `db:"total_incl_vat"`
	TotalExclVATRef     decimal.Decimal `db:"total_excl_vat_ref"`
	TotalInclVATRef     decimal.Decimal `db:"total_incl_vat_ref"`
	ProfitRef           decimal.Decimal `db:"profit_ref"`
}

// OrderAddress is a frozen copy of address text at order time. It has
// no foreign key to the live address book.
type OrderAddress struct {
	ID             string      `db:"id"`
	OrderID        string      `db:"order_id"`
	Type           AddressType `db:"type"`
	Name           string      `db:"name"`
	CompanyName    string      `db:"company_name"`
	CompanyVATCode string      `db:"company_vat_code"`
	CompanyRegNo   string      `db:"company_reg_no"`
	Line1          string      `db:"line1"`
	City           string      `db:"city"`
	County         string      `db:"county"`
	Postcode       string      `db:"postcode"`
	Country        string      `db:"country"`
	Phone          string      `db:"phone"`
}

// PickupPoint is carrier metadata for locker delivery. It replaces the
// customer address as the shipping snapshot source.
type PickupPoint struct {
	Carrier    string
	PointName  string
	LockerCode string
	City       string
	County     string
	Postcode   string
	Country    string
}

// SnapshotAddress copies a customer's live address (plus company fields
// when the customer is a company) into an order-scoped record.
func SnapshotAddress(c Customer, a Address, typ AddressType) OrderAddress {
	oa := OrderAddress{
		Type:     typ,
		Name:     c.Name,
		Line1:    a.Line1,
		City:     a.City,
		County:   a.County,
		Postcode: a.Postcode,
		Country:  a.Country,
		Phone:    a.Phone,
	}
	if c.Type == CustomerCompany {
		oa.CompanyName = c.CompanyName
		oa.CompanyVATCode = c.CompanyVATCode
		oa.CompanyRegNo = c.CompanyRegNo
	}
	return oa
}

// PickupPointAddress synthesizes a shipping snapshot from carrier
// pickup-point metadata. This is the alternate construction path for
// locker deliveries; nothing is read from the customer address book.
func PickupPointAddress(c Customer, p PickupPoint) OrderAddress {
	return OrderAddress{
		Type:     AddressShipping,
		Name:     c.Name,
		Line1:    p.Carrier + " " + p.PointName + " / " + p.LockerCode,
		City:     p.City,
		County:   p.County,
		Postcode: p.Postcode,
		Country:  p.Country,
	}
}

// OrderHistory is an append-only audit row. Payload holds opaque JSON
// {"old_value":...,"new_value":...}; Actor is empty for system actions.
type OrderHistory struct {
	ID        string        `db:"id"`
	OrderID   string        `db:"order_id"`
	Actor     string        `db:"actor"`
	Action    HistoryAction `db:"action"`
	Payload   string        `db:"payload"`
	Note      string        `db:"note"`
	CreatedAt string        `db:"created_at"`
}
