package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (catalog/groups/tiers/currencies)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure dev customers exist (idempotent; safe to run every start)
	if err := seedCustomers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products (prices in the reference currency)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  parent_id TEXT NULL REFERENCES products(id) ON DELETE SET NULL,
  type TEXT NOT NULL CHECK (type IN ('simple','configurable','variant')),
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  ean TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  purchase_price NUMERIC NOT NULL DEFAULT 0 CHECK (purchase_price >= 0),
  vat_percent NUMERIC NOT NULL DEFAULT 19 CHECK (vat_percent >= 0 AND vat_percent < 100),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_parent   ON products(parent_id);

-- Customer groups (pricing segments)
CREATE TABLE IF NOT EXISTS customer_groups(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  vat_exempt INTEGER NOT NULL DEFAULT 0
);

-- Quantity price tiers per (product, group)
CREATE TABLE IF NOT EXISTS product_group_prices(
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  group_id TEXT NOT NULL REFERENCES customer_groups(id) ON DELETE CASCADE,
  min_quantity INTEGER NOT NULL CHECK (min_quantity >= 1),
  price NUMERIC NOT NULL CHECK (price >= 0),
  PRIMARY KEY (product_id, group_id, min_quantity)
);
CREATE INDEX IF NOT EXISTS idx_group_prices_product ON product_group_prices(product_id, group_id);

-- Currencies: rate = reference units per 1 unit of code
CREATE TABLE IF NOT EXISTS currencies(
  code TEXT PRIMARY KEY,
  rate NUMERIC NOT NULL CHECK (rate > 0)
);

-- Customers & addresses (the live, editable records)
CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL CHECK (type IN ('individual','company')),
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  group_id TEXT NOT NULL REFERENCES customer_groups(id),
  company_name TEXT NOT NULL DEFAULT '',
  company_vat_code TEXT NOT NULL DEFAULT '',
  company_reg_no TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email ON customers(LOWER(email));

CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('billing','shipping','headquarters')),
  line1 TEXT NOT NULL,
  city TEXT NOT NULL,
  county TEXT NOT NULL DEFAULT '',
  postcode TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  preferred INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_addresses_customer ON addresses(customer_id);

-- Orders: header frozen at checkout
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES customers(id),
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
    ('pending','awaiting_payment','confirmed','processing','shipped','delivered','cancelled','refunded')),
  currency_code TEXT NOT NULL,
  exchange_rate NUMERIC NOT NULL,
  vat_rate_applied NUMERIC NOT NULL,
  is_vat_exempt INTEGER NOT NULL DEFAULT 0,
  total_excl_vat NUMERIC NOT NULL,
  total_incl_vat NUMERIC NOT NULL,
  total_excl_vat_ref NUMERIC NOT NULL,
  total_incl_vat_ref NUMERIC NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_customer   ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

-- Frozen line items; product_id is provenance only
CREATE TABLE IF NOT EXISTS order_products(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  ean TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  unit_price_excl_vat NUMERIC NOT NULL,
  unit_price_ref NUMERIC NOT NULL,
  unit_price_excl_vat_ref NUMERIC NOT NULL,
  purchase_price_ref NUMERIC NOT NULL,
  vat_percent NUMERIC NOT NULL,
  exchange_rate NUMERIC NOT NULL,
  total_excl_vat NUMERIC NOT NULL,
  total_incl_vat NUMERIC NOT NULL,
  total_excl_vat_ref NUMERIC NOT NULL,
  total_incl_vat_ref NUMERIC NOT NULL,
  profit_ref NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_products_order ON order_products(order_id);

-- Frozen address text; deliberately no FK to addresses
CREATE TABLE IF NOT EXISTS order_addresses(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('billing','shipping')),
  name TEXT NOT NULL,
  company_name TEXT NOT NULL DEFAULT '',
  company_vat_code TEXT NOT NULL DEFAULT '',
  company_reg_no TEXT NOT NULL DEFAULT '',
  line1 TEXT NOT NULL,
  city TEXT NOT NULL,
  county TEXT NOT NULL DEFAULT '',
  postcode TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_order_addresses_order ON order_addresses(order_id);

-- Append-only audit log; payload is opaque JSON {old_value,new_value}
CREATE TABLE IF NOT EXISTS order_history(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  actor TEXT NOT NULL DEFAULT '',
  action TEXT NOT NULL,
  payload TEXT NOT NULL DEFAULT '{}',
  note TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_order_history_order  ON order_history(order_id);
CREATE INDEX IF NOT EXISTS idx_order_history_action ON order_history(order_id, action);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM customer_groups`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog/groups/tiers/currencies")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO customer_groups(id,code,name,vat_exempt) VALUES
	  ('grp-b2c','b2c','Retail (B2C)',0),
	  ('grp-b2b','b2b','Business (B2B)',0),
	  ('grp-b2b-premium','b2b-premium','Business Premium (B2B)',1)`)

	tx.MustExec(`INSERT INTO currencies(code,rate) VALUES
	  ('RON',1.0000),
	  ('EUR',4.9750),
	  ('USD',4.5820)`)

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('office-chairs','Office Chairs'),
	  ('desks','Desks'),
	  ('storage','Storage')`)

	tx.MustExec(`INSERT INTO products(id,category_id,parent_id,type,name,sku,ean,price,purchase_price,vat_percent) VALUES
	  ('chair-ergo','office-chairs',NULL,'configurable','Ergo Task Chair','CH-ERGO','',449.00,260.00,19),
	  ('chair-ergo-blk','office-chairs','chair-ergo','variant','Ergo Task Chair Black','CH-ERGO-BLK','5941234000011',449.00,260.00,19),
	  ('chair-ergo-gry','office-chairs','chair-ergo','variant','Ergo Task Chair Grey','CH-ERGO-GRY','5941234000028',459.00,265.00,19),
	  ('desk-oak-140','desks',NULL,'simple','Oak Desk 140cm','DK-OAK-140','5941234000103',899.00,540.00,19),
	  ('cabinet-a4','storage',NULL,'simple','A4 File Cabinet','ST-CAB-A4','5941234000202',350.00,190.00,19)`)

	// Step functions over quantity; the min_quantity=1 row is the base tier.
	tx.MustExec(`INSERT INTO product_group_prices(product_id,group_id,min_quantity,price) VALUES
	  ('chair-ergo-blk','grp-b2c',1,449.00),
	  ('chair-ergo-blk','grp-b2c',5,429.00),
	  ('chair-ergo-blk','grp-b2c',10,399.00),
	  ('chair-ergo-blk','grp-b2b',1,419.00),
	  ('chair-ergo-blk','grp-b2b',10,389.00),
	  ('chair-ergo-blk','grp-b2b',25,359.00),
	  ('desk-oak-140','grp-b2b',1,849.00),
	  ('desk-oak-140','grp-b2b',5,799.00),
	  ('cabinet-a4','grp-b2b-premium',1,315.00),
	  ('cabinet-a4','grp-b2b-premium',20,289.00)`)

	return tx.Commit()
}

// seedCustomers ensures one individual and one company customer exist,
// each with preferred addresses (idempotent; safe to run every start).
func seedCustomers(db *sqlx.DB) error {
	type c struct {
		ID, Type, Email, Name, Group, Hash string
	}
	mk := func(id, typ, email, name, group, raw string) c {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return c{ID: id, Type: typ, Email: email, Name: name, Group: group, Hash: string(h)}
	}

	customers := []c{
		mk("cust-maria", "individual", "maria@example.test", "Maria Ionescu", "grp-b2c", "Passw0rd!"),
		mk("cust-birotix", "company", "orders@birotix.test", "Andrei Pop", "grp-b2b", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range customers {
		if _, err := tx.Exec(`
			INSERT INTO customers(id,type,email,name,password_hash,group_id)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Type, x.Email, x.Name, x.Hash, x.Group); err != nil {
			return err
		}
	}

	_, _ = tx.Exec(`
		UPDATE customers SET company_name='Birotix SRL', company_vat_code='RO18273645', company_reg_no='J40/1234/2015'
		WHERE id='cust-birotix' AND company_name=''
	`)

	if _, err := tx.Exec(`
		INSERT INTO addresses(id,customer_id,type,line1,city,county,postcode,country,phone,preferred)
		VALUES
		  ('addr-maria-bill','cust-maria','billing','Str. Lalelelor 12','Cluj-Napoca','Cluj','400000','RO','+40700000001',1),
		  ('addr-maria-ship','cust-maria','shipping','Str. Lalelelor 12','Cluj-Napoca','Cluj','400000','RO','+40700000001',1),
		  ('addr-birotix-hq','cust-birotix','billing','Bd. Unirii 45','Bucuresti','Sector 3','030825','RO','+40210000002',1),
		  ('addr-birotix-wh','cust-birotix','shipping','Sos. de Centura 8','Popesti-Leordeni','Ilfov','077160','RO','+40210000003',1)
		ON CONFLICT(id) DO NOTHING
	`); err != nil {
		return err
	}

	return tx.Commit()
}
