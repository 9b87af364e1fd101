package handlers

import (
	"backoffice/internal/repos"
	"backoffice/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	PricingHandler *PricingHandler
	OrderHandler   *OrderHandler
}

// NewDeps wires repos and services. defaultGroupID is the id of the
// retail fallback group, resolved once at startup.
func NewDeps(db *sqlx.DB, defaultGroupID string) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	priceRepo := repos.NewGroupPriceRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	currRepo := repos.NewCurrencyRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	pricingSvc := services.NewPricingService(priceRepo, prodRepo, defaultGroupID)
	checkoutSvc := services.NewCheckoutService(custRepo, currRepo, prodRepo, orderRepo, pricingSvc)
	orderSvc := services.NewOrderService(orderRepo)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		PricingHandler: &PricingHandler{Pricing: pricingSvc},
		OrderHandler:   &OrderHandler{Checkout: checkoutSvc, Order: orderSvc, Repo: orderRepo},
	}
}
