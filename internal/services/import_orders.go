package services

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

// ImportResult reports what a bulk import created and how many rows it dropped.
type ImportResult struct {
	Created []domain.Order
	Skipped int
}

// ImportOrders reads a CSV file with the columns id and volume, plus the
// optional address, lat, lon, window_start and window_end. Rows without
// coordinates are geocoded from their address; rows that still cannot be
// located are skipped. All created orders are stored in one transaction.
func ImportOrders(
	ctx context.Context,
	filename string,
	content io.Reader,
	repo ports.PlanningRepository,
	geocoder ports.Geocoder,
) (ImportResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
	case ".xls", ".xlsx":
		return ImportResult{}, &ImportError{Msg: "excel files are not supported, upload a .csv file"}
	default:
		return ImportResult{}, &ImportError{Msg: "only .csv files are supported"}
	}

	r := csv.NewReader(content)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, &ImportError{Msg: "file is empty"}
	}
	if err != nil {
		return ImportResult{}, &ImportError{Msg: fmt.Sprintf("invalid csv: %v", err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["id"]; !ok {
		return ImportResult{}, &ImportError{Msg: "columns id and volume required"}
	}
	if _, ok := cols["volume"]; !ok {
		return ImportResult{}, &ImportError{Msg: "columns id and volume required"}
	}

	var (
		orders  []domain.Order
		skipped int
		line    = 1
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return ImportResult{}, &ImportError{Msg: fmt.Sprintf("line %d: invalid csv: %v", line, err)}
		}

		row := csvRow{record: record, cols: cols}
		if row.blank() {
			continue
		}

		order, err := row.order()
		if err != nil {
			return ImportResult{}, &ImportError{Msg: fmt.Sprintf("line %d: %v", line, err)}
		}

		if !order.Located() && order.Address != "" {
			c, err := geocoder.Geocode(ctx, order.Address)
			if err != nil {
				slog.Warn("import: geocode failed", "line", line, "address", order.Address, "err", err)
			} else {
				order.Latitude, order.Longitude = &c.Lat, &c.Lon
			}
		}
		if !order.Located() {
			skipped++
			continue
		}

		orders = append(orders, order)
	}

	created, err := repo.CreateOrders(ctx, orders)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import orders: %w", err)
	}

	return ImportResult{Created: created, Skipped: skipped}, nil
}

type csvRow struct {
	record []string
	cols   map[string]int
}

func (r csvRow) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r csvRow) float(name string) (*float64, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	return &v, nil
}

func (r csvRow) order() (domain.Order, error) {
	o := domain.Order{
		ExternalID: r.get("id"),
		Address:    r.get("address"),
	}
	if o.ExternalID == "" {
		return domain.Order{}, errors.New("id is empty")
	}

	volume, err := r.float("volume")
	if err != nil {
		return domain.Order{}, err
	}
	if volume != nil {
		o.Volume = *volume
	}

	lat, err := r.float("lat")
	if err != nil {
		return domain.Order{}, err
	}
	lon, err := r.float("lon")
	if err != nil {
		return domain.Order{}, err
	}
	if lat != nil && lon != nil {
		o.Latitude, o.Longitude = lat, lon
	}

	if o.WindowStart, err = r.float("window_start"); err != nil {
		return domain.Order{}, err
	}
	if o.WindowEnd, err = r.float("window_end"); err != nil {
		return domain.Order{}, err
	}

	return o, nil
}
