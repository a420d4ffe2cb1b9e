package repos

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fandomia/internal/slug"
)

// DriverFor picks the database/sql driver for a DSN: pgx for postgres URLs,
// sqlite for everything else (a file path or ":memory:").
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// SQLite allows one writer; ":memory:" is also per-connection.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("ensureSchema: %w", err)
	}
	// Ensure accounts and catalog exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, fmt.Errorf("seedUsers: %w", err)
	}
	if err := seedCatalog(db); err != nil {
		return nil, fmt.Errorf("seedCatalog: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}

const sqliteSchema = `
PRAGMA foreign_keys = ON;

-- Accounts & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- bearer token handed out at login
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS profiles(
  id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  email TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'client',
  status TEXT NOT NULL DEFAULT 'active',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Backs the whoami_role RPC; customers have no row here
CREATE TABLE IF NOT EXISTS user_roles(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL CHECK (role IN ('client','staff','admin','owner'))
);

-- Remote cart mirror
CREATE TABLE IF NOT EXISTS cart_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  variant_id INTEGER NULL,
  variant_key INTEGER NOT NULL DEFAULT 0, -- COALESCE(variant_id,0): NULL must still conflict
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  added_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_key ON cart_items(customer_id, session_id, product_id, variant_key);
CREATE INDEX IF NOT EXISTS idx_cart_items_customer ON cart_items(customer_id, added_at);

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category_id INTEGER NULL REFERENCES categories(id) ON DELETE SET NULL,
  price_from NUMERIC NOT NULL DEFAULT 0 CHECK (price_from >= 0),
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS product_variants(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  is_active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS product_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_images_product ON product_images(product_id, sort_order);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ DEFAULT now(),
  last_seen  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS profiles(
  id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  email TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'client',
  status TEXT NOT NULL DEFAULT 'active',
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_roles(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL CHECK (role IN ('client','staff','admin','owner'))
);

CREATE TABLE IF NOT EXISTS cart_items(
  id BIGSERIAL PRIMARY KEY,
  customer_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  product_id BIGINT NOT NULL,
  variant_id BIGINT NULL,
  variant_key BIGINT NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  added_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_key ON cart_items(customer_id, session_id, product_id, variant_key);
CREATE INDEX IF NOT EXISTS idx_cart_items_customer ON cart_items(customer_id, added_at);

CREATE TABLE IF NOT EXISTS categories(
  id BIGSERIAL PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category_id BIGINT NULL REFERENCES categories(id) ON DELETE SET NULL,
  price_from NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (price_from >= 0),
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_variants(
  id BIGSERIAL PRIMARY KEY,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS product_images(
  id BIGSERIAL PRIMARY KEY,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_images_product ON product_images(product_id, sort_order);
`

// seedUsers ensures two clients and one account per staff role exist.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role string
	}
	users := []u{
		{"u-ana", "ana@fandomia.test", "Ana", "client"},
		{"u-beto", "beto@fandomia.test", "Beto", "client"},
		{"u-sofia", "sofia@fandomia.test", "Sofía", "staff"},
		{"u-admin", "admin@fandomia.test", "Admin", "admin"},
		{"u-owner", "owner@fandomia.test", "Owner", "owner"},
	}

	return withTx(context.Background(), db, func(tx *sqlx.Tx) error {
		for _, x := range users {
			var n int
			if err := tx.Get(&n, tx.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), x.Email); err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(tx.Rebind(`INSERT INTO users(id,email,password_hash) VALUES(?,?,?)`),
				x.ID, x.Email, string(h)); err != nil {
				return err
			}
			if _, err := tx.Exec(tx.Rebind(`INSERT INTO profiles(id,email,full_name,role) VALUES(?,?,?,?)`),
				x.ID, x.Email, x.Name, x.Role); err != nil {
				return err
			}
			if x.Role != "client" {
				if _, err := tx.Exec(tx.Rebind(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`), x.ID, x.Role); err != nil {
					return err
				}
			}
			log.Printf("[seed] user %s (%s)", x.Email, x.Role)
		}
		return nil
	})
}

type seedVariant struct {
	Size, Color string
	Price       string
	Stock       int
}

type seedImage struct {
	URL   string
	Order int
}

type seedProduct struct {
	Name, Description string
	Category          string
	Variants          []seedVariant
	Images            []seedImage
}

var categories = []string{"Playeras", "Figuras", "Sudaderas", "Tazas"}

var catalog = []seedProduct{
	{"Camiseta Naruto Akatsuki", "Algodón peinado, estampado frontal.", "Playeras", []seedVariant{
		{"S", "Negro", "349.00", 10}, {"M", "Negro", "349.00", 4}, {"L", "Negro", "369.00", 0},
	}, []seedImage{
		{"img/camiseta-naruto-akatsuki/espalda.jpg", 2}, {"img/camiseta-naruto-akatsuki/frente.jpg", 1},
	}},
	{"Figura Goku Súper Saiyajin", "PVC, 18 cm, base incluida.", "Figuras", []seedVariant{
		{"", "", "899.50", 3},
	}, []seedImage{
		{"img/figura-goku-super-saiyajin/1.jpg", 0},
	}},
	{"Sudadera Pokémon Pikachu", "Felpa interior, capucha con orejas.", "Sudaderas", []seedVariant{
		{"M", "Amarillo", "749.00", 6}, {"XL", "Amarillo", "779.00", 2},
	}, []seedImage{
		{"img/sudadera-pokemon-pikachu/7.jpg", 7}, {"img/sudadera-pokemon-pikachu/1.jpg", 1},
		{"img/sudadera-pokemon-pikachu/2.jpg", 2}, {"img/sudadera-pokemon-pikachu/3.jpg", 3},
		{"img/sudadera-pokemon-pikachu/4.jpg", 4}, {"img/sudadera-pokemon-pikachu/5.jpg", 5},
		{"img/sudadera-pokemon-pikachu/6.jpg", 6},
	}},
	{"Taza Studio Ghibli Totoro", "Cerámica 350 ml.", "Tazas", nil, nil},
}

// seedCatalog inserts the demo categories and products; both are keyed by
// slug so reruns are no-ops.
func seedCatalog(db *sqlx.DB) error {
	return withTx(context.Background(), db, func(tx *sqlx.Tx) error {
		for _, name := range categories {
			if _, err := tx.Exec(tx.Rebind(`
				INSERT INTO categories(slug,name) VALUES(?,?)
				ON CONFLICT(slug) DO NOTHING`), slug.Make(name), name); err != nil {
				return err
			}
		}
		for _, p := range catalog {
			s := slug.Make(p.Name)
			from := decimal.Zero
			for i, v := range p.Variants {
				price := decimal.RequireFromString(v.Price)
				if i == 0 || price.LessThan(from) {
					from = price
				}
			}
			res, err := tx.Exec(tx.Rebind(`
				INSERT INTO products(slug,name,description,price_from,category_id)
				VALUES(?,?,?,?,(SELECT id FROM categories WHERE slug = ?))
				ON CONFLICT(slug) DO NOTHING`), s, p.Name, p.Description, from, slug.Make(p.Category))
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}
			var pid int64
			if err := tx.Get(&pid, tx.Rebind(`SELECT id FROM products WHERE slug = ?`), s); err != nil {
				return err
			}
			for _, v := range p.Variants {
				if _, err := tx.Exec(tx.Rebind(`
					INSERT INTO product_variants(product_id,size,color,price,stock)
					VALUES(?,?,?,?,?)`), pid, v.Size, v.Color, decimal.RequireFromString(v.Price), v.Stock); err != nil {
					return err
				}
			}
			for _, img := range p.Images {
				if _, err := tx.Exec(tx.Rebind(`
					INSERT INTO product_images(product_id,url,sort_order)
					VALUES(?,?,?)`), pid, img.URL, img.Order); err != nil {
					return err
				}
			}
			log.Printf("[seed] product %s", s)
		}
		return nil
	})
}
