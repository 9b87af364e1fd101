package repos

import (
	"backoffice/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `
  id, category_id, COALESCE(parent_id,'') AS parent_id, type, name, sku,
  COALESCE(ean,'') AS ean, price, purchase_price, vat_percent, active,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT`+productColumns+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT`+productColumns+`
	  FROM products
	  WHERE category_id = ? AND active = 1
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

// Variants returns the variant children of a configurable product.
func (r *ProductRepo) Variants(parentID string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT`+productColumns+`
	  FROM products
	  WHERE parent_id = ? AND active = 1
	  ORDER BY sku
	`, parentID)
	return out, err
}
