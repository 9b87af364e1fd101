package services

import (
	"database/sql"
	"errors"
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder = errors.New("order has no lines")
	ErrNoAddress  = errors.New("customer has no address on file")
)

type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutInput struct {
	CustomerID   string              `json:"customer_id"`
	CurrencyCode string              `json:"currency_code"`
	Lines        []CheckoutLine      `json:"lines"`
	PickupPoint  *domain.PickupPoint `json:"pickup_point"`
}

type CheckoutService struct {
	Customers  *repos.CustomerRepo
	Currencies *repos.CurrencyRepo
	Prods      *repos.ProductRepo
	Orders     *repos.OrderRepo
	Pricing    *PricingService
}

func NewCheckoutService(customers *repos.CustomerRepo, currencies *repos.CurrencyRepo,
	prods *repos.ProductRepo, orders *repos.OrderRepo, pricing *PricingService) *CheckoutService {
	return &CheckoutService{Customers: customers, Currencies: currencies, Prods: prods, Orders: orders, Pricing: pricing}
}

// PlaceOrder validates everything, snapshots products and addresses,
// and writes header + lines + addresses + the order_created history
// row in one transaction. Nothing is persisted on failure.
func (s *CheckoutService) PlaceOrder(in CheckoutInput) (string, error) {
	if len(in.Lines) == 0 {
		return "", ErrEmptyOrder
	}
	for _, l := range in.Lines {
		if l.Quantity < 1 {
			return "", ErrInvalidQuantity
		}
	}

	customer, err := s.Customers.Get(in.CustomerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("unknown customer %s", in.CustomerID)
		}
		return "", err
	}
	group, err := s.Customers.Group(customer.GroupID)
	if err != nil {
		return "", err
	}

	rate, err := s.Currencies.Rate(in.CurrencyCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrMissingExchangeRate
		}
		return "", err
	}

	orderID := uuid.NewString()

	lines := make([]domain.OrderProduct, 0, len(in.Lines))
	totals := make([]LineTotals, 0, len(in.Lines))
	for _, l := range in.Lines {
		p, err := s.Prods.Get(l.ProductID)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", fmt.Errorf("unknown product %s", l.ProductID)
			}
			return "", err
		}

		unitRef, ok, err := s.Pricing.ResolvePrice(p.ID, customer.GroupID, l.Quantity)
		if err != nil {
			return "", err
		}
		if !ok {
			unitRef = p.Price
		}

		vat := p.VATPercent
		if group.VATExempt {
			// B2B exemption: VAT forced to zero, excl == incl.
			vat = decimal.Zero
		}

		lt, err := ComputeLine(LineInput{
			UnitPriceRef:     unitRef,
			PurchasePriceRef: p.PurchasePrice,
			Quantity:         l.Quantity,
			VATPercent:       vat,
			ExchangeRate:     rate,
		})
		if err != nil {
			return "", err
		}
		totals = append(totals, lt)

		lines = append(lines, domain.OrderProduct{
			ID:                  uuid.NewString(),
			OrderID:             orderID,
			ProductID:           p.ID,
			Name:                p.Name,
			SKU:                 p.SKU,
			EAN:                 p.EAN,
			Quantity:            l.Quantity,
			UnitPrice:           lt.UnitPrice,
			UnitPriceExclVAT:    lt.UnitPriceExclVAT,
			UnitPriceRef:        unitRef,
			UnitPriceExclVATRef: lt.UnitPriceExclVATRef,
			PurchasePriceRef:    p.PurchasePrice,
			VATPercent:          vat,
			ExchangeRate:        rate,
			TotalExclVAT:        lt.TotalExclVAT,
			TotalInclVAT:        lt.TotalInclVAT,
			TotalExclVATRef:     lt.TotalExclVATRef,
			TotalInclVATRef:     lt.TotalInclVATRef,
			ProfitRef:           lt.ProfitRef,
		})
	}

	addrs, err := s.snapshotAddresses(orderID, customer, in.PickupPoint)
	if err != nil {
		return "", err
	}

	sum := SumOrder(totals)
	order := domain.Order{
		ID:              orderID,
		CustomerID:      customer.ID,
		Status:          domain.StatusPending,
		CurrencyCode:    in.CurrencyCode,
		ExchangeRate:    rate,
		VATRateApplied:  sum.VATRateApplied,
		IsVATExempt:     group.VATExempt,
		TotalExclVAT:    sum.TotalExclVAT,
		TotalInclVAT:    sum.TotalInclVAT,
		TotalExclVATRef: sum.TotalExclVATRef,
		TotalInclVATRef: sum.TotalInclVATRef,
	}

	created := domain.OrderHistory{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Action:  domain.ActionOrderCreated,
		Payload: historyPayload(nil, string(domain.StatusPending)),
	}

	if err := s.Orders.Create(order, lines, addrs, created); err != nil {
		return "", err
	}
	return orderID, nil
}

// snapshotAddresses builds the frozen billing and shipping rows. The
// billing row always copies the customer's preferred billing address;
// the shipping row copies the preferred shipping address unless a
// pickup point was chosen, in which case it is synthesized from the
// carrier metadata instead.
func (s *CheckoutService) snapshotAddresses(orderID string, c domain.Customer, pickup *domain.PickupPoint) ([]domain.OrderAddress, error) {
	billingSrc, err := s.Customers.PreferredAddress(c.ID, domain.AddressBilling)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoAddress
		}
		return nil, err
	}
	billing := domain.SnapshotAddress(c, billingSrc, domain.AddressBilling)
	billing.ID = uuid.NewString()
	billing.OrderID = orderID

	var shipping domain.OrderAddress
	if pickup != nil {
		shipping = domain.PickupPointAddress(c, *pickup)
	} else {
		src, err := s.Customers.PreferredAddress(c.ID, domain.AddressShipping)
		if err == sql.ErrNoRows {
			src = billingSrc
		} else if err != nil {
			return nil, err
		}
		shipping = domain.SnapshotAddress(c, src, domain.AddressShipping)
	}
	shipping.ID = uuid.NewString()
	shipping.OrderID = orderID

	return []domain.OrderAddress{billing, shipping}, nil
}
