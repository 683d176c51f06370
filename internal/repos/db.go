package repos

import (
	_ "embed"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is fixed width so text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func Now() string { return time.Now().UTC().Format(TimeLayout) }

// ErrDuplicate reports an insert that hit a unique index.
var ErrDuplicate = errors.New("duplicate key")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

//go:embed seed.yaml
var seedYAML []byte

// OpenDB opens the store named by dsn. A postgres:// DSN uses lib/pq,
// anything else is a SQLite file (or ":memory:").
func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := driverFor(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection: keeps :memory: databases and PRAGMAs alive and
		// serialises writers
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedContent(db); err != nil {
		return nil, err
	}
	return db, nil
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}

const sqliteSchema = `
PRAGMA foreign_keys = ON;

-- Users, profiles & sessions
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','STAFF','SUPERUSER')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS user_profiles(
  user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  is_blocked INTEGER NOT NULL DEFAULT 0,
  blocked_until TEXT,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id INTEGER NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL CHECK (length(name) > 0),
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'souvenirs',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_owner ON carts(owner_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS cart_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  added_at TEXT NOT NULL,
  UNIQUE (cart_id, product_id)
);

-- Blog
CREATE TABLE IF NOT EXISTS articles(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  short_content TEXT NOT NULL CHECK (length(short_content) <= 500),
  full_content TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  published_date TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_date);

CREATE TABLE IF NOT EXISTS comments(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
  author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  created_date TEXT NOT NULL,
  approved INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_comments_article ON comments(article_id);

-- Feedback
CREATE TABLE IF NOT EXISTS feedback(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  overall_rating TEXT NOT NULL,
  liked_features TEXT NOT NULL DEFAULT '',
  visit_frequency TEXT NOT NULL,
  recommendation INTEGER NOT NULL CHECK (recommendation BETWEEN 0 AND 10),
  suggestions TEXT NOT NULL DEFAULT '',
  agree_to_terms INTEGER NOT NULL CHECK (agree_to_terms),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users(
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','STAFF','SUPERUSER')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS user_profiles(
  user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
  blocked_until TEXT,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id BIGINT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL CHECK (length(name) > 0),
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'souvenirs',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS carts(
  id BIGSERIAL PRIMARY KEY,
  owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_owner ON carts(owner_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS cart_items(
  id BIGSERIAL PRIMARY KEY,
  cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  added_at TEXT NOT NULL,
  UNIQUE (cart_id, product_id)
);

CREATE TABLE IF NOT EXISTS articles(
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  short_content TEXT NOT NULL CHECK (length(short_content) <= 500),
  full_content TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  published_date TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_date);

CREATE TABLE IF NOT EXISTS comments(
  id BIGSERIAL PRIMARY KEY,
  article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
  author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  created_date TEXT NOT NULL,
  approved BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_comments_article ON comments(article_id);

CREATE TABLE IF NOT EXISTS feedback(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  overall_rating TEXT NOT NULL,
  liked_features TEXT NOT NULL DEFAULT '',
  visit_frequency TEXT NOT NULL,
  recommendation INTEGER NOT NULL CHECK (recommendation BETWEEN 0 AND 10),
  suggestions TEXT NOT NULL DEFAULT '',
  agree_to_terms BOOLEAN NOT NULL CHECK (agree_to_terms),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
`

type seedFile struct {
	Products []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Price       string `yaml:"price"`
		Category    string `yaml:"category"`
		Image       string `yaml:"image"`
	} `yaml:"products"`
	Articles []struct {
		Title        string `yaml:"title"`
		ShortContent string `yaml:"short_content"`
		FullContent  string `yaml:"full_content"`
	} `yaml:"articles"`
}

// seedContent inserts the sample catalog and blog entries that are missing,
// matched by name/title. Safe to run on every startup.
func seedContent(db *sqlx.DB) error {
	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := Now()
	for _, p := range seed.Products {
		res, err := tx.Exec(tx.Rebind(`
			INSERT INTO products(name, description, price, image, category, created_at, updated_at)
			SELECT ?, ?, ?, ?, ?, ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = ?)
		`), p.Name, p.Description, p.Price, p.Image, p.Category, ts, ts, p.Name)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("[seed] product %q", p.Name)
		}
	}
	for _, a := range seed.Articles {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO articles(title, short_content, full_content, image, published_date, created_at, updated_at)
			SELECT ?, ?, ?, '', ?, ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM articles WHERE title = ?)
		`), a.Title, a.ShortContent, a.FullContent, ts, ts, ts, a.Title); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// hashPassword is swapped out by tests that count hashing work.
var hashPassword = bcrypt.GenerateFromPassword

// seedUsers ensures two USERs, one STAFF and one SUPERUSER exist, each with
// a profile (idempotent). Only missing accounts get a password hash.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Email, Name, Role string
	}
	const seedPassword = "Passw0rd!"
	accounts := []u{
		{"alice@avecplaisir.test", "Alice", "USER"},
		{"bob@avecplaisir.test", "Bob", "USER"},
		{"staff@avecplaisir.test", "Sofia", "STAFF"},
		{"admin@avecplaisir.test", "Admin", "SUPERUSER"},
	}

	emails := make([]string, len(accounts))
	for i, a := range accounts {
		emails[i] = a.Email
	}
	q, args, err := sqlx.In(`SELECT LOWER(email) FROM users WHERE LOWER(email) IN (?)`, emails)
	if err != nil {
		return err
	}
	var existing []string
	if err := db.Select(&existing, db.Rebind(q), args...); err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, e := range existing {
		have[e] = true
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := Now()
	for _, a := range accounts {
		if have[a.Email] {
			continue
		}
		h, err := hashPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO users(email,name,password_hash,role,created_at)
			VALUES(?,?,?,?,?)
			ON CONFLICT DO NOTHING
		`), a.Email, a.Name, string(h), a.Role, ts); err != nil {
			return err
		}
		log.Printf("[seed] user %s", a.Email)
	}
	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO user_profiles(user_id, created_at)
		SELECT u.id, ? FROM users u
		WHERE NOT EXISTS (SELECT 1 FROM user_profiles p WHERE p.user_id = u.id)
	`), ts); err != nil {
		return err
	}

	return tx.Commit()
}
