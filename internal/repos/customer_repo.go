package repos

import (
	"backoffice/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Get(id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `
	  SELECT id, type, email, name, password_hash, group_id,
	         company_name, company_vat_code, company_reg_no, created_at
	  FROM customers WHERE id = ?
	`, id)
	return c, err
}

func (r *CustomerRepo) Group(id string) (domain.CustomerGroup, error) {
	var g domain.CustomerGroup
	err := r.db.Get(&g, `SELECT id, code, name, vat_exempt FROM customer_groups WHERE id = ?`, id)
	return g, err
}

func (r *CustomerRepo) GroupIDByCode(code string) (string, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM customer_groups WHERE code = ?`, code)
	return id, err
}

// PreferredAddress returns the customer's preferred address of the
// given type. sql.ErrNoRows means "no address on file", which callers
// treat as a normal state, not a failure.
func (r *CustomerRepo) PreferredAddress(customerID string, typ domain.AddressType) (domain.Address, error) {
	var a domain.Address
	err := r.db.Get(&a, `
	  SELECT id, customer_id, type, line1, city, county, postcode, country, phone, preferred
	  FROM addresses
	  WHERE customer_id = ? AND type = ?
	  ORDER BY preferred DESC, id
	  LIMIT 1
	`, customerID, typ)
	return a, err
}

func (r *CustomerRepo) UpdateAddress(a domain.Address) error {
	_, err := r.db.Exec(`
	  UPDATE addresses
	  SET line1 = ?, city = ?, county = ?, postcode = ?, country = ?, phone = ?, preferred = ?
	  WHERE id = ?
	`, a.Line1, a.City, a.County, a.Postcode, a.Country, a.Phone, a.Preferred, a.ID)
	return err
}
