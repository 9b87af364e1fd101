package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CurrencyRepo struct{ db *sqlx.DB }

func NewCurrencyRepo(db *sqlx.DB) *CurrencyRepo { return &CurrencyRepo{db: db} }

// Rate returns reference-currency units per 1 unit of code.
// Returns sql.ErrNoRows for an unknown code.
func (r *CurrencyRepo) Rate(code string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.Get(&rate, `SELECT rate FROM currencies WHERE code = ?`, code)
	return rate, err
}
