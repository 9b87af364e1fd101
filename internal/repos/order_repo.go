package repos

import (
	"backoffice/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `
  id, customer_id, status, currency_code, exchange_rate, vat_rate_applied,
  is_vat_exempt, total_excl_vat, total_incl_vat, total_excl_vat_ref,
  total_incl_vat_ref, is_paid, COALESCE(paid_at,'') AS paid_at, created_at`

// Create writes the order header, its frozen line items and addresses,
// and the first history row in a single transaction. A failure on any
// row leaves nothing behind.
func (r *OrderRepo) Create(o domain.Order, lines []domain.OrderProduct, addrs []domain.OrderAddress, h domain.OrderHistory) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, customer_id, status, currency_code, exchange_rate, vat_rate_applied,
	     is_vat_exempt, total_excl_vat, total_incl_vat, total_excl_vat_ref,
	     total_incl_vat_ref, is_paid, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,0,CURRENT_TIMESTAMP)
	`, o.ID, o.CustomerID, o.Status, o.CurrencyCode, o.ExchangeRate, o.VATRateApplied,
		o.IsVATExempt, o.TotalExclVAT, o.TotalInclVAT, o.TotalExclVATRef, o.TotalInclVATRef); err != nil {
		return err
	}

	for _, l := range lines {
		if _, err := tx.Exec(`
		  INSERT INTO order_products
		    (id, order_id, product_id, name, sku, ean, quantity,
		     unit_price, unit_price_excl_vat, unit_price_ref, unit_price_excl_vat_ref,
		     purchase_price_ref, vat_percent, exchange_rate,
		     total_excl_vat, total_incl_vat, total_excl_vat_ref, total_incl_vat_ref, profit_ref)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, l.ID, l.OrderID, l.ProductID, l.Name, l.SKU, l.EAN, l.Quantity,
			l.UnitPrice, l.UnitPriceExclVAT, l.UnitPriceRef, l.UnitPriceExclVATRef,
			l.PurchasePriceRef, l.VATPercent, l.ExchangeRate,
			l.TotalExclVAT, l.TotalInclVAT, l.TotalExclVATRef, l.TotalInclVATRef, l.ProfitRef); err != nil {
			return err
		}
	}

	for _, a := range addrs {
		if _, err := tx.Exec(`
		  INSERT INTO order_addresses
		    (id, order_id, type, name, company_name, company_vat_code, company_reg_no,
		     line1, city, county, postcode, country, phone)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, a.ID, a.OrderID, a.Type, a.Name, a.CompanyName, a.CompanyVATCode, a.CompanyRegNo,
			a.Line1, a.City, a.County, a.Postcode, a.Country, a.Phone); err != nil {
			return err
		}
	}

	if err := insertHistory(tx, h); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT`+orderColumns+` FROM orders WHERE id = ?`, orderID)
	return o, err
}

func (r *OrderRepo) Lines(orderID string) ([]domain.OrderProduct, error) {
	var out []domain.OrderProduct
	err := r.db.Select(&out, `
	  SELECT id, order_id, COALESCE(product_id,'') AS product_id, name, sku, ean, quantity,
	         unit_price, unit_price_excl_vat, unit_price_ref, unit_price_excl_vat_ref,
	         purchase_price_ref, vat_percent, exchange_rate,
	         total_excl_vat, total_incl_vat, total_excl_vat_ref, total_incl_vat_ref, profit_ref
	  FROM order_products
	  WHERE order_id = ?
	  ORDER BY name
	`, orderID)
	return out, err
}

func (r *OrderRepo) Addresses(orderID string) ([]domain.OrderAddress, error) {
	var out []domain.OrderAddress
	err := r.db.Select(&out, `
	  SELECT id, order_id, type, name, company_name, company_vat_code, company_reg_no,
	         line1, city, county, postcode, country, phone
	  FROM order_addresses
	  WHERE order_id = ?
	  ORDER BY type
	`, orderID)
	return out, err
}

// ListByCustomer returns order headers newest first.
func (r *OrderRepo) ListByCustomer(customerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT`+orderColumns+`
	  FROM orders
	  WHERE customer_id = ?
	  ORDER BY datetime(created_at) DESC
	`, customerID)
	return out, err
}

// UpdateStatus flips the status and appends the audit row atomically.
func (r *OrderRepo) UpdateStatus(orderID string, status domain.OrderStatus, h domain.OrderHistory) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID); err != nil {
		return err
	}
	if err := insertHistory(tx, h); err != nil {
		return err
	}
	return tx.Commit()
}

// SetPaid flips the payment sub-state and appends the audit row
// atomically. paidAt is empty when reversing a payment. The UPDATE
// only matches when the flag actually changes, so a concurrent
// duplicate write reports false instead of appending a second audit
// row.
func (r *OrderRepo) SetPaid(orderID string, paid bool, paidAt string, h domain.OrderHistory) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE orders SET is_paid = ?, paid_at = NULLIF(?, '') WHERE id = ? AND is_paid = ?`,
		paid, paidAt, orderID, !paid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := insertHistory(tx, h); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *OrderRepo) AppendHistory(h domain.OrderHistory) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertHistory(tx, h); err != nil {
		return err
	}
	return tx.Commit()
}

func insertHistory(tx *sqlx.Tx, h domain.OrderHistory) error {
	_, err := tx.Exec(`
	  INSERT INTO order_history(id, order_id, actor, action, payload, note, created_at)
	  VALUES (?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, h.ID, h.OrderID, h.Actor, h.Action, h.Payload, h.Note)
	return err
}

func (r *OrderRepo) History(orderID string) ([]domain.OrderHistory, error) {
	var out []domain.OrderHistory
	err := r.db.Select(&out, `
	  SELECT id, order_id, actor, action, payload, note, created_at
	  FROM order_history
	  WHERE order_id = ?
	  ORDER BY rowid
	`, orderID)
	return out, err
}

// LatestHistory returns the newest history row with the given action.
// created_at has one-second resolution, so rowid (insertion order)
// decides within a second. sql.ErrNoRows means no such event was
// recorded.
func (r *OrderRepo) LatestHistory(orderID string, action domain.HistoryAction) (domain.OrderHistory, error) {
	var h domain.OrderHistory
	err := r.db.Get(&h, `
	  SELECT id, order_id, actor, action, payload, note, created_at
	  FROM order_history
	  WHERE order_id = ? AND action = ?
	  ORDER BY rowid DESC
	  LIMIT 1
	`, orderID, action)
	return h, err
}
