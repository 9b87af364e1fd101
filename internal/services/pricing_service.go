package services

import (
	"database/sql"

	"backoffice/internal/repos"

	"github.com/shopspring/decimal"
)

// PricingService resolves quantity-tiered unit prices. The default
// retail group id is resolved once at startup and injected here, so an
// empty group id never triggers a hidden lookup.
type PricingService struct {
	Prices *repos.GroupPriceRepo
	Prods  *repos.ProductRepo

	defaultGroupID string
}

func NewPricingService(prices *repos.GroupPriceRepo, prods *repos.ProductRepo, defaultGroupID string) *PricingService {
	return &PricingService{Prices: prices, Prods: prods, defaultGroupID: defaultGroupID}
}

// Tier is one display row of a price break table. MaxQuantity is nil
// on the last tier (unbounded).
type Tier struct {
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ResolvePrice picks the tier with the largest min_quantity not above
// qty; with no matching tier it falls back to the product base price.
// An unknown product yields ok=false with no error: absent pricing
// data is a business state, not a failure.
func (s *PricingService) ResolvePrice(productID, groupID string, qty int) (decimal.Decimal, bool, error) {
	if qty < 1 {
		return decimal.Zero, false, ErrInvalidQuantity
	}
	if groupID == "" {
		groupID = s.defaultGroupID
	}

	tiers, err := s.Prices.TiersFor(productID, groupID)
	if err != nil {
		return decimal.Zero, false, err
	}

	best := -1
	for i, t := range tiers {
		if t.MinQuantity <= qty {
			best = i
		}
	}
	if best >= 0 {
		return tiers[best].Price, true, nil
	}

	p, err := s.Prods.Get(productID)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return p.Price, true, nil
}

// TiersFor returns the group's price breaks for display, with each
// tier's max_quantity derived from the next tier's minimum. Zero rows
// for the group return an empty list; no tier is fabricated from the
// base price.
func (s *PricingService) TiersFor(productID, groupID string) ([]Tier, error) {
	if groupID == "" {
		groupID = s.defaultGroupID
	}

	rows, err := s.Prices.TiersFor(productID, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]Tier, 0, len(rows))
	for i, r := range rows {
		t := Tier{MinQuantity: r.MinQuantity, Price: r.Price}
		if i+1 < len(rows) {
			max := rows[i+1].MinQuantity - 1
			t.MaxQuantity = &max
		}
		out = append(out, t)
	}
	return out, nil
}
