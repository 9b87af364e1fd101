package domain

type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerCompany    CustomerType = "company"
)

func (t CustomerType) Valid() bool {
	return t == CustomerIndividual || t == CustomerCompany
}

type Customer struct {
	ID             string       `db:"id"`
	Type           CustomerType `db:"type"`
	Email          string       `db:"email"`
	Name           string       `db:"name"`
	Hash           string       `db:"password_hash"`
	GroupID        string       `db:"group_id"`
	CompanyName    string       `db:"company_name"`
	CompanyVATCode string       `db:"company_vat_code"`
	CompanyRegNo   string       `db:"company_reg_no"`
	CreatedAt      string       `db:"created_at"`
}

type AddressType string

const (
	AddressBilling      AddressType = "billing"
	AddressShipping     AddressType = "shipping"
	AddressHeadquarters AddressType = "headquarters"
)

func (t AddressType) Valid() bool {
	switch t {
	case AddressBilling, AddressShipping, AddressHeadquarters:
		return true
	}
	return false
}

// Address is the customer's live, editable address book entry. Orders
// never reference these rows; they copy the fields (see OrderAddress).
type Address struct {
	ID         string      `db:"id"`
	CustomerID string      `db:"customer_id"`
	Type       AddressType `db:"type"`
	Line1      string      `db:"line1"`
	City       string      `db:"city"`
	County     string      `db:"county"`
	Postcode   string      `db:"postcode"`
	Country    string      `db:"country"`
	Phone      string      `db:"phone"`
	Preferred  bool        `db:"preferred"`
}
