package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"backoffice/internal/domain"
	"backoffice/internal/repos"
	"backoffice/internal/services"
)

func memdbPricing(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE categories(id TEXT PRIMARY KEY, name TEXT, created_at TEXT, updated_at TEXT);
	CREATE TABLE products(id TEXT PRIMARY KEY, category_id TEXT, parent_id TEXT, type TEXT,
	  name TEXT, sku TEXT, ean TEXT, price NUMERIC, purchase_price NUMERIC, vat_percent NUMERIC,
	  active INTEGER, created_at TEXT, updated_at TEXT);
	CREATE TABLE customer_groups(id TEXT PRIMARY KEY, code TEXT, name TEXT, vat_exempt INTEGER);
	CREATE TABLE product_group_prices(product_id TEXT, group_id TEXT, min_quantity INTEGER, price NUMERIC,
	  PRIMARY KEY(product_id, group_id, min_quantity));

	INSERT INTO categories(id,name) VALUES ('office-chairs','Office Chairs');
	INSERT INTO customer_groups(id,code,name,vat_exempt) VALUES
	  ('g-retail','b2c','Retail',0),
	  ('g-biz','b2b','Business',0);
	INSERT INTO products(id,category_id,type,name,sku,ean,price,purchase_price,vat_percent,active,created_at)
	  VALUES ('p1','office-chairs','simple','Task Chair','TC-1','',100.00,60.00,19,1,'now'),
	         ('p2','office-chairs','simple','Side Table','ST-1','',200.00,120.00,19,1,'now');
	INSERT INTO product_group_prices(product_id,group_id,min_quantity,price) VALUES
	  ('p1','g-retail',1,90.00),
	  ('p1','g-retail',5,80.00),
	  ('p1','g-retail',10,70.00),
	  ('p2','g-retail',5,180.00);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newPricing(db *sqlx.DB) *services.PricingService {
	return services.NewPricingService(repos.NewGroupPriceRepo(db), repos.NewProductRepo(db), "g-retail")
}

func TestResolvePrice_ClosestBelowTier(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	cases := []struct {
		qty  int
		want string
	}{
		{1, "90"},
		{4, "90"},
		{5, "80"},
		{9, "80"},
		{10, "70"},
		{500, "70"},
	}
	for _, tc := range cases {
		price, ok, err := svc.ResolvePrice("p1", "g-retail", tc.qty)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("qty %d: expected a price", tc.qty)
		}
		if !price.Equal(d(tc.want)) {
			t.Fatalf("qty %d: want %s, got %s", tc.qty, tc.want, price)
		}
	}
}

func TestResolvePrice_BelowSmallestTierFallsBackToBase(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	// p2's smallest tier starts at 5; below that the base price applies.
	price, ok, err := svc.ResolvePrice("p2", "g-retail", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !price.Equal(d("200")) {
		t.Fatalf("want base 200, got %s (ok=%v)", price, ok)
	}

	price, ok, err = svc.ResolvePrice("p2", "g-retail", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !price.Equal(d("180")) {
		t.Fatalf("want tier 180, got %s (ok=%v)", price, ok)
	}
}

func TestResolvePrice_GroupWithoutTiersUsesBase(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	price, ok, err := svc.ResolvePrice("p1", "g-biz", 50)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !price.Equal(d("100")) {
		t.Fatalf("want base 100, got %s (ok=%v)", price, ok)
	}
}

func TestResolvePrice_DefaultGroup(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	// Empty group id resolves against the injected retail group.
	price, ok, err := svc.ResolvePrice("p1", "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !price.Equal(d("80")) {
		t.Fatalf("want 80 via default group, got %s (ok=%v)", price, ok)
	}
}

func TestResolvePrice_UnknownProduct(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	price, ok, err := svc.ResolvePrice("nope", "g-retail", 1)
	if err != nil {
		t.Fatalf("unknown product must not error, got %v", err)
	}
	if ok || !price.IsZero() {
		t.Fatalf("unknown product: want empty result, got %s (ok=%v)", price, ok)
	}
}

func TestResolvePrice_BadQuantity(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	if _, _, err := svc.ResolvePrice("p1", "g-retail", 0); err != services.ErrInvalidQuantity {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}
}

func TestTiersFor_MaxQuantityDerivation(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	tiers, err := svc.TiersFor("p1", "g-retail")
	if err != nil {
		t.Fatal(err)
	}
	if len(tiers) != 3 {
		t.Fatalf("want 3 tiers, got %d", len(tiers))
	}

	// 1-4, 5-9, 10-unbounded
	if tiers[0].MinQuantity != 1 || tiers[0].MaxQuantity == nil || *tiers[0].MaxQuantity != 4 {
		t.Fatalf("tier 0 bounds wrong: %+v", tiers[0])
	}
	if tiers[1].MinQuantity != 5 || tiers[1].MaxQuantity == nil || *tiers[1].MaxQuantity != 9 {
		t.Fatalf("tier 1 bounds wrong: %+v", tiers[1])
	}
	if tiers[2].MinQuantity != 10 || tiers[2].MaxQuantity != nil {
		t.Fatalf("last tier must be unbounded: %+v", tiers[2])
	}
}

func TestResolvePrice_SeesUpsertedTier(t *testing.T) {
	db := memdbPricing(t)
	priceRepo := repos.NewGroupPriceRepo(db)
	svc := services.NewPricingService(priceRepo, repos.NewProductRepo(db), "g-retail")

	err := priceRepo.Upsert(domain.GroupPrice{
		ProductID: "p1", GroupID: "g-retail", MinQuantity: 5, Price: d("75.00"),
	})
	if err != nil {
		t.Fatal(err)
	}

	price, ok, err := svc.ResolvePrice("p1", "g-retail", 7)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !price.Equal(d("75")) {
		t.Fatalf("want upserted 75, got %s (ok=%v)", price, ok)
	}
}

func TestTiersFor_NoRowsIsEmptyNotFabricated(t *testing.T) {
	svc := newPricing(memdbPricing(t))

	tiers, err := svc.TiersFor("p1", "g-biz")
	if err != nil {
		t.Fatal(err)
	}
	if len(tiers) != 0 {
		t.Fatalf("group without rows must get an empty tier list, got %+v", tiers)
	}
}
