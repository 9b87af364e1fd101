package repos

import (
	"backoffice/internal/domain"

	"github.com/jmoiron/sqlx"
)

type GroupPriceRepo struct{ db *sqlx.DB }

func NewGroupPriceRepo(db *sqlx.DB) *GroupPriceRepo { return &GroupPriceRepo{db: db} }

// TiersFor returns the price steps for (product, group) in ascending
// min_quantity order. An empty slice is a normal result: the group
// simply has no dedicated pricing for that product.
func (r *GroupPriceRepo) TiersFor(productID, groupID string) ([]domain.GroupPrice, error) {
	var out []domain.GroupPrice
	err := r.db.Select(&out, `
	  SELECT product_id, group_id, min_quantity, price
	  FROM product_group_prices
	  WHERE product_id = ? AND group_id = ?
	  ORDER BY min_quantity
	`, productID, groupID)
	return out, err
}

// Upsert sets one tier row, replacing the price if the step exists.
func (r *GroupPriceRepo) Upsert(p domain.GroupPrice) error {
	_, err := r.db.Exec(`
	  INSERT INTO product_group_prices(product_id, group_id, min_quantity, price)
	  VALUES (?, ?, ?, ?)
	  ON CONFLICT(product_id, group_id, min_quantity) DO UPDATE SET price = excluded.price
	`, p.ProductID, p.GroupID, p.MinQuantity, p.Price)
	return err
}
