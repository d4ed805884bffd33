package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to the planning database. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, nil, fmt.Errorf("openDB: %w", err)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	if dialect.DriverName() == "sqlite" {
		// modernc sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}

	return db, dialect, nil
}

// Dialect covers the few statements that differ between sqlite and postgres.
// Queries are written with ? placeholders and passed through Rebind.
type Dialect interface {
	DriverName() string
	AutoIncrementPK() string
	BoolType() string
	Rebind(query string) string
}

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string         { return "sqlite" }
func (sqliteDialect) AutoIncrementPK() string    { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (sqliteDialect) BoolType() string           { return "INTEGER" }
func (sqliteDialect) Rebind(query string) string { return query }

type postgresDialect struct{}

func (postgresDialect) DriverName() string         { return "pgx" }
func (postgresDialect) AutoIncrementPK() string    { return "BIGSERIAL PRIMARY KEY" }
func (postgresDialect) BoolType() string           { return "BOOLEAN" }
func (postgresDialect) Rebind(query string) string { return Rebind(query) }

// Rebind rewrites ? placeholders to $1, $2, ...
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
