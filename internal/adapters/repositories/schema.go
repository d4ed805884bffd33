package repositories

import (
	"database/sql"
	"delivery-route-console/internal/platform/db"
	"errors"
	"fmt"
)

// InitSchema creates the planner tables if they do not exist yet.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDepotQuery := `
	CREATE TABLE IF NOT EXISTS depot (
		id INTEGER PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		address TEXT
	);
	`

	createVehiclesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS vehicles (
		id %s,
		name TEXT NOT NULL,
		capacity DOUBLE PRECISION NOT NULL,
		active %s NOT NULL,
		default_ready %s NOT NULL
	);
	`, dialect.AutoIncrementPK(), dialect.BoolType(), dialect.BoolType())

	createOrdersQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS orders (
		id %s,
		external_id TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		volume DOUBLE PRECISION NOT NULL,
		window_start DOUBLE PRECISION,
		window_end DOUBLE PRECISION
	);
	`, dialect.AutoIncrementPK())

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	statements := []string{
		createDepotQuery,
		createVehiclesQuery,
		createOrdersQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
