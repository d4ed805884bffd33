package repositories

import (
	"context"
	"database/sql"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLPlanningRepository implements the PlanningRepository port on sqlite or postgres.
type SQLPlanningRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPlanningRepository(conn *sql.DB, dialect db.Dialect) *SQLPlanningRepository {
	return &SQLPlanningRepository{DB: conn, Dialect: dialect}
}

var _ ports.PlanningRepository = (*SQLPlanningRepository)(nil)

// The depot is a single row with id 1.
const depotRowID = 1

func (s *SQLPlanningRepository) q(query string) string { return s.Dialect.Rebind(query) }

func (s *SQLPlanningRepository) GetDepot(ctx context.Context) (*domain.Depot, error) {
	var (
		d       domain.Depot
		address sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, s.q(`
	SELECT latitude, longitude, address
	FROM depot
	WHERE id = ?;
	`), depotRowID).Scan(&d.Latitude, &d.Longitude, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get depot: query depot table: %w", err)
	}
	if address.Valid {
		d.Address = &address.String
	}
	return &d, nil
}

func (s *SQLPlanningRepository) SaveDepot(ctx context.Context, d domain.Depot) (domain.Depot, error) {
	_, err := s.DB.ExecContext(ctx, s.q(`
	INSERT INTO depot (id, latitude, longitude, address)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET latitude = excluded.latitude,
		longitude = excluded.longitude,
		address = excluded.address;
	`), depotRowID, d.Latitude, d.Longitude, d.Address)
	if err != nil {
		return domain.Depot{}, fmt.Errorf("save depot: upsert: %w", err)
	}
	return d, nil
}

const vehicleColumns = `id, name, capacity, active, default_ready`

func scanVehicle(row interface{ Scan(...any) error }) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.Capacity, &v.Active, &v.DefaultReady)
	return v, err
}

// Return all vehicles in id order.
func (s *SQLPlanningRepository) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 16)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

func (s *SQLPlanningRepository) getVehicle(ctx context.Context, id int64) (domain.Vehicle, error) {
	v, err := scanVehicle(s.DB.QueryRowContext(ctx, s.q(`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vehicle{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return v, nil
}

func (s *SQLPlanningRepository) CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	err := s.DB.QueryRowContext(ctx, s.q(`
	INSERT INTO vehicles (name, capacity, active, default_ready)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`), v.Name, v.Capacity, v.Active, v.DefaultReady).Scan(&v.ID)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("create vehicle: insert: %w", err)
	}
	return v, nil
}

func (s *SQLPlanningRepository) UpdateVehicle(ctx context.Context, id int64, u ports.VehicleUpdate) (domain.Vehicle, error) {
	var (
		sets []string
		args []any
	)
	if u.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *u.Name)
	}
	if u.Capacity != nil {
		sets, args = append(sets, "capacity = ?"), append(args, *u.Capacity)
	}
	if u.Active != nil {
		sets, args = append(sets, "active = ?"), append(args, *u.Active)
	}

	if err := s.update(ctx, "vehicles", id, sets, args); err != nil {
		return domain.Vehicle{}, fmt.Errorf("update vehicle %d: %w", id, err)
	}
	return s.getVehicle(ctx, id)
}

func (s *SQLPlanningRepository) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.delete(ctx, "vehicles", id); err != nil {
		return fmt.Errorf("delete vehicle %d: %w", id, err)
	}
	return nil
}

const orderColumns = `id, external_id, address, latitude, longitude, volume, window_start, window_end`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o                domain.Order
		lat, lon         sql.NullFloat64
		winStart, winEnd sql.NullFloat64
	)
	if err := row.Scan(&o.ID, &o.ExternalID, &o.Address, &lat, &lon, &o.Volume, &winStart, &winEnd); err != nil {
		return domain.Order{}, err
	}
	o.Latitude = nullFloat(lat)
	o.Longitude = nullFloat(lon)
	o.WindowStart = nullFloat(winStart)
	o.WindowEnd = nullFloat(winEnd)
	return o, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// Return all orders in id order.
func (s *SQLPlanningRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

func (s *SQLPlanningRepository) getOrder(ctx context.Context, id int64) (domain.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, s.q(`SELECT `+orderColumns+` FROM orders WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// CreateOrders inserts all orders in one transaction and returns them with ids.
func (s *SQLPlanningRepository) CreateOrders(ctx context.Context, orders []domain.Order) ([]domain.Order, error) {
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO orders (external_id, address, latitude, longitude, volume, window_start, window_end)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`))
	if err != nil {
		return nil, fmt.Errorf("create orders: prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		err := stmt.QueryRowContext(ctx,
			o.ExternalID, o.Address, o.Latitude, o.Longitude, o.Volume, o.WindowStart, o.WindowEnd,
		).Scan(&o.ID)
		if err != nil {
			return nil, fmt.Errorf("create orders: insert external_id=%q: %w", o.ExternalID, err)
		}
		out = append(out, o)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create orders: commit tx: %w", err)
	}

	return out, nil
}

func (s *SQLPlanningRepository) UpdateOrder(ctx context.Context, id int64, u ports.OrderUpdate) (domain.Order, error) {
	var (
		sets []string
		args []any
	)
	if u.ExternalID != nil {
		sets, args = append(sets, "external_id = ?"), append(args, *u.ExternalID)
	}
	if u.Address != nil {
		sets, args = append(sets, "address = ?"), append(args, *u.Address)
	}
	if u.Location != nil {
		sets = append(sets, "latitude = ?", "longitude = ?")
		args = append(args, u.Location.Lat, u.Location.Lon)
	}
	if u.Volume != nil {
		sets, args = append(sets, "volume = ?"), append(args, *u.Volume)
	}
	if u.SetWindowStart {
		sets, args = append(sets, "window_start = ?"), append(args, u.WindowStart)
	}
	if u.SetWindowEnd {
		sets, args = append(sets, "window_end = ?"), append(args, u.WindowEnd)
	}

	if err := s.update(ctx, "orders", id, sets, args); err != nil {
		return domain.Order{}, fmt.Errorf("update order %d: %w", id, err)
	}
	return s.getOrder(ctx, id)
}

func (s *SQLPlanningRepository) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.delete(ctx, "orders", id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	return nil
}

// update applies sets to one row. With nothing to set it only checks that the row exists.
func (s *SQLPlanningRepository) update(ctx context.Context, table string, id int64, sets []string, args []any) error {
	if len(sets) == 0 {
		var one int
		err := s.DB.QueryRowContext(ctx, s.q(`SELECT 1 FROM `+table+` WHERE id = ?;`), id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return err
	}

	query := `UPDATE ` + table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?;`
	res, err := s.DB.ExecContext(ctx, s.q(query), append(args, id)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *SQLPlanningRepository) delete(ctx context.Context, table string, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM `+table+` WHERE id = ?;`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
