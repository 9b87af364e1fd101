package services_test

import (
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"backoffice/internal/domain"
	"backoffice/internal/repos"
	"backoffice/internal/services"
)

// testdb bootstraps a named shared in-memory database through OpenDB,
// so the real schema and the dev seed are exercised too.
func testdb(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := repos.OpenDB(dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testEnv struct {
	db        *sqlx.DB
	orders    *repos.OrderRepo
	customers *repos.CustomerRepo
	checkout  *services.CheckoutService
	lifecycle *services.OrderService
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	db := testdb(t)
	prodRepo := repos.NewProductRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	currRepo := repos.NewCurrencyRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	defaultGroupID, err := custRepo.GroupIDByCode("b2c")
	if err != nil {
		t.Fatal(err)
	}
	pricing := services.NewPricingService(repos.NewGroupPriceRepo(db), prodRepo, defaultGroupID)

	return testEnv{
		db:        db,
		orders:    orderRepo,
		customers: custRepo,
		checkout:  services.NewCheckoutService(custRepo, currRepo, prodRepo, orderRepo, pricing),
		lifecycle: services.NewOrderService(orderRepo),
	}
}

func TestPlaceOrder_TierPriceAndFrozenTotals(t *testing.T) {
	env := newEnv(t)

	// 5 black chairs hit the b2c tier at min_quantity 5 (429.00).
	oid, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "RON",
		Lines:        []services.CheckoutLine{{ProductID: "chair-ergo-blk", Quantity: 5}},
	})
	if err != nil {
		t.Fatal(err)
	}

	o, err := env.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("new order status: want pending, got %s", o.Status)
	}
	if !o.ExchangeRate.Equal(d("1")) {
		t.Fatalf("RON rate must freeze as 1.0000, got %s", o.ExchangeRate)
	}
	// 429 / 1.19 = 360.50; * 5 = 1802.50; incl = 2145.00
	if !o.TotalExclVATRef.Equal(d("1802.50")) {
		t.Fatalf("total excl vat ref: want 1802.50, got %s", o.TotalExclVATRef)
	}
	if !o.TotalInclVATRef.Equal(d("2145.00")) {
		t.Fatalf("total incl vat ref: want 2145.00, got %s", o.TotalInclVATRef)
	}
	if !o.VATRateApplied.Equal(d("19")) {
		t.Fatalf("vat rate applied: want 19, got %s", o.VATRateApplied)
	}

	lines, err := env.orders.Lines(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d", len(lines))
	}
	l := lines[0]
	if l.Name != "Ergo Task Chair Black" || l.SKU != "CH-ERGO-BLK" {
		t.Fatalf("line must freeze name/sku, got %q %q", l.Name, l.SKU)
	}
	if !l.UnitPriceRef.Equal(d("429")) {
		t.Fatalf("tier price: want 429, got %s", l.UnitPriceRef)
	}
	// (360.50 - 260.00) * 5
	if !l.ProfitRef.Equal(d("502.50")) {
		t.Fatalf("profit: want 502.50, got %s", l.ProfitRef)
	}
}

func TestPlaceOrder_TransactionCurrencyDividesByRate(t *testing.T) {
	env := newEnv(t)

	// 10 chairs on the b2b account: tier 389.00; EUR rate 4.9750.
	oid, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-birotix",
		CurrencyCode: "EUR",
		Lines:        []services.CheckoutLine{{ProductID: "chair-ergo-blk", Quantity: 10}},
	})
	if err != nil {
		t.Fatal(err)
	}

	lines, err := env.orders.Lines(oid)
	if err != nil {
		t.Fatal(err)
	}
	l := lines[0]
	if !l.ExchangeRate.Equal(d("4.9750")) {
		t.Fatalf("rate must be frozen on the line, got %s", l.ExchangeRate)
	}
	// 389 / 4.975 = 78.19, not 389 * 4.975
	if !l.UnitPrice.Equal(d("78.19")) {
		t.Fatalf("EUR unit price: want 78.19, got %s", l.UnitPrice)
	}
}

func TestPlaceOrder_VATExemptGroup(t *testing.T) {
	env := newEnv(t)

	env.db.MustExec(`INSERT INTO customers(id,type,email,name,password_hash,group_id,company_name,company_vat_code)
	  VALUES('cust-prem','company','prem@corp.test','Prem Corp','x','grp-b2b-premium','Prem Corp SRL','RO99887766')`)
	env.db.MustExec(`INSERT INTO addresses(id,customer_id,type,line1,city,country,preferred)
	  VALUES('addr-prem','cust-prem','billing','Str. Fabricii 1','Brasov','RO',1)`)

	// 20 cabinets hit the premium tier (289.00); VAT is forced to zero.
	oid, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-prem",
		CurrencyCode: "RON",
		Lines:        []services.CheckoutLine{{ProductID: "cabinet-a4", Quantity: 20}},
	})
	if err != nil {
		t.Fatal(err)
	}

	o, err := env.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if !o.IsVATExempt {
		t.Fatal("order must carry the explicit exemption flag")
	}
	if !o.VATRateApplied.IsZero() {
		t.Fatalf("exempt order vat applied: want 0, got %s", o.VATRateApplied)
	}
	if !o.TotalExclVATRef.Equal(o.TotalInclVATRef) {
		t.Fatalf("exempt order: excl %s != incl %s", o.TotalExclVATRef, o.TotalInclVATRef)
	}
	if !o.TotalInclVATRef.Equal(d("5780.00")) {
		t.Fatalf("total: want 5780.00, got %s", o.TotalInclVATRef)
	}
}

func TestPlaceOrder_SnapshotSurvivesAddressEdit(t *testing.T) {
	env := newEnv(t)

	oid, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "RON",
		Lines:        []services.CheckoutLine{{ProductID: "desk-oak-140", Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Edit the live address book the way the app would.
	live, err := env.customers.PreferredAddress("cust-maria", domain.AddressShipping)
	if err != nil {
		t.Fatal(err)
	}
	live.Line1 = "Str. Noua 99"
	live.City = "Oradea"
	if err := env.customers.UpdateAddress(live); err != nil {
		t.Fatal(err)
	}
	env.db.MustExec(`UPDATE addresses SET line1='Str. Noua 99', city='Oradea' WHERE customer_id='cust-maria'`)

	addrs, err := env.orders.Addresses(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 2 {
		t.Fatalf("want billing+shipping snapshots, got %d", len(addrs))
	}
	for _, a := range addrs {
		if a.Line1 != "Str. Lalelelor 12" || a.City != "Cluj-Napoca" {
			t.Fatalf("snapshot changed after live edit: %+v", a)
		}
	}
}

func TestPlaceOrder_PickupPointSynthesizesShipping(t *testing.T) {
	env := newEnv(t)

	oid, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "RON",
		Lines:        []services.CheckoutLine{{ProductID: "cabinet-a4", Quantity: 1}},
		PickupPoint: &domain.PickupPoint{
			Carrier: "Sameday", PointName: "EasyBox Iulius", LockerCode: "CJ-041",
			City: "Cluj-Napoca", County: "Cluj", Postcode: "400117", Country: "RO",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	addrs, err := env.orders.Addresses(oid)
	if err != nil {
		t.Fatal(err)
	}
	var shipping *domain.OrderAddress
	for i := range addrs {
		if addrs[i].Type == domain.AddressShipping {
			shipping = &addrs[i]
		}
	}
	if shipping == nil {
		t.Fatal("no shipping snapshot")
	}
	if shipping.Line1 != "Sameday EasyBox Iulius / CJ-041" {
		t.Fatalf("locker shipping must come from carrier metadata, got %q", shipping.Line1)
	}
	if shipping.Line1 == "Str. Lalelelor 12" {
		t.Fatal("locker order must not copy the customer address")
	}
}

func TestPlaceOrder_FailuresLeaveNothingBehind(t *testing.T) {
	env := newEnv(t)

	countOrders := func() int {
		var n int
		if err := env.db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
			t.Fatal(err)
		}
		return n
	}
	before := countOrders()

	// unknown product on the second line
	_, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "RON",
		Lines: []services.CheckoutLine{
			{ProductID: "desk-oak-140", Quantity: 1},
			{ProductID: "no-such-product", Quantity: 2},
		},
	})
	if err == nil {
		t.Fatal("unknown product must fail the order")
	}

	// unknown currency
	_, err = env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "GBP",
		Lines:        []services.CheckoutLine{{ProductID: "desk-oak-140", Quantity: 1}},
	})
	if err != services.ErrMissingExchangeRate {
		t.Fatalf("want ErrMissingExchangeRate, got %v", err)
	}

	// empty order
	if _, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID: "cust-maria", CurrencyCode: "RON",
	}); err != services.ErrEmptyOrder {
		t.Fatalf("want ErrEmptyOrder, got %v", err)
	}

	// zero quantity rejected before any lookup
	if _, err := env.checkout.PlaceOrder(services.CheckoutInput{
		CustomerID:   "cust-maria",
		CurrencyCode: "RON",
		Lines:        []services.CheckoutLine{{ProductID: "desk-oak-140", Quantity: 0}},
	}); err != services.ErrInvalidQuantity {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}

	if got := countOrders(); got != before {
		t.Fatalf("failed checkouts must not persist orders: before=%d after=%d", before, got)
	}
	var nLines int
	if err := env.db.Get(&nLines, `SELECT COUNT(*) FROM order_products`); err != nil {
		t.Fatal(err)
	}
	if nLines != 0 {
		t.Fatalf("failed checkouts must not persist line items, found %d", nLines)
	}
}
