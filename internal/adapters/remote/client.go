package remote

import (
	"bytes"
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/obs"
	"delivery-route-console/internal/ports"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// Client is the HTTP implementation of the RemoteStore port.
// It holds no entity state: every method is exactly one round trip.
type Client struct {
	baseURL string
	session *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout;
// deadlines come from the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

// NewClient returns a client for the planner API rooted at baseURL
// (for example "http://localhost:8080/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.RemoteStore = (*Client)(nil)

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Health(ctx context.Context) (_ ports.Health, err error) {
	const op = "remote.Health"
	defer obs.Time(ctx, op)(&err)

	var body wireHealth
	if err := c.call(ctx, op, http.MethodGet, "/health", nil, "", &body); err != nil {
		return ports.Health{}, err
	}
	h, err := body.toPort()
	if err != nil {
		return ports.Health{}, &ports.DecodeError{Op: op, Err: err}
	}
	return h, nil
}

func (c *Client) FetchDepot(ctx context.Context) (_ *domain.Depot, err error) {
	const op = "remote.FetchDepot"
	defer obs.Time(ctx, op)(&err)

	var body *wireDepot
	if err := c.call(ctx, op, http.MethodGet, "/depot", nil, "", &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	d, err := body.toDomain()
	if err != nil {
		return nil, &ports.DecodeError{Op: op, Err: err}
	}
	return &d, nil
}

func (c *Client) SaveDepot(ctx context.Context, in ports.DepotInput) (_ domain.Depot, err error) {
	const op = "remote.SaveDepot"
	defer obs.Time(ctx, op)(&err)

	payload := wireDepotInput{Latitude: in.Latitude, Longitude: in.Longitude, Address: in.Address}

	var body wireDepot
	if err := c.callJSON(ctx, op, http.MethodPost, "/depot", payload, &body); err != nil {
		return domain.Depot{}, err
	}
	d, err := body.toDomain()
	if err != nil {
		return domain.Depot{}, &ports.DecodeError{Op: op, Err: err}
	}
	return d, nil
}

func (c *Client) ListVehicles(ctx context.Context) (_ []domain.Vehicle, err error) {
	const op = "remote.ListVehicles"
	defer obs.Time(ctx, op)(&err)

	var body *[]wireVehicle
	if err := c.call(ctx, op, http.MethodGet, "/vehicles", nil, "", &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, &ports.DecodeError{Op: op, Err: fmt.Errorf("vehicle list is null")}
	}

	out := make([]domain.Vehicle, 0, len(*body))
	for i, w := range *body {
		v, err := w.toDomain()
		if err != nil {
			return nil, &ports.DecodeError{Op: op, Err: fmt.Errorf("vehicle #%d: %w", i, err)}
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Client) AddVehicle(ctx context.Context, in ports.VehicleInput) (_ domain.Vehicle, err error) {
	const op = "remote.AddVehicle"
	defer obs.Time(ctx, op)(&err)

	payload := wireVehicleInput{Name: in.Name, Capacity: in.Capacity}

	var body wireVehicle
	if err := c.callJSON(ctx, op, http.MethodPost, "/vehicles", payload, &body); err != nil {
		return domain.Vehicle{}, err
	}
	v, err := body.toDomain()
	if err != nil {
		return domain.Vehicle{}, &ports.DecodeError{Op: op, Err: err}
	}
	return v, nil
}

func (c *Client) ListOrders(ctx context.Context) (_ []domain.Order, err error) {
	const op = "remote.ListOrders"
	defer obs.Time(ctx, op)(&err)

	var body *[]wireOrder
	if err := c.call(ctx, op, http.MethodGet, "/orders", nil, "", &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, &ports.DecodeError{Op: op, Err: fmt.Errorf("order list is null")}
	}

	out := make([]domain.Order, 0, len(*body))
	for i, w := range *body {
		o, err := w.toDomain()
		if err != nil {
			return nil, &ports.DecodeError{Op: op, Err: fmt.Errorf("order #%d: %w", i, err)}
		}
		out = append(out, o)
	}
	return out, nil
}

func (c *Client) AddOrder(ctx context.Context, in ports.OrderInput) (_ domain.Order, err error) {
	const op = "remote.AddOrder"
	defer obs.Time(ctx, op)(&err)

	payload := wireOrderInput{
		ExternalID:  in.ExternalID,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Volume:      in.Volume,
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
	}

	var body wireOrder
	if err := c.callJSON(ctx, op, http.MethodPost, "/orders", payload, &body); err != nil {
		return domain.Order{}, err
	}
	o, err := body.toDomain()
	if err != nil {
		return domain.Order{}, &ports.DecodeError{Op: op, Err: err}
	}
	return o, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) (err error) {
	const op = "remote.DeleteOrder"
	defer obs.Time(ctx, op)(&err)

	return c.call(ctx, op, http.MethodDelete, "/orders/"+strconv.FormatInt(id, 10), nil, "", nil)
}

func (c *Client) ImportOrders(ctx context.Context, filename string, content io.Reader) (err error) {
	const op = "remote.ImportOrders"
	defer obs.Time(ctx, op)(&err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("%s: read upload: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: close multipart body: %w", op, err)
	}

	return c.call(ctx, op, http.MethodPost, "/orders/import", &buf, mw.FormDataContentType(), nil)
}

func (c *Client) Solve(ctx context.Context, req ports.SolveRequest) (_ []domain.Route, err error) {
	const op = "remote.Solve"
	defer obs.Time(ctx, op)(&err)

	ids := req.VehicleIDs
	if ids == nil {
		ids = []int64{}
	}
	payload := wireSolveRequest{ForceAll: req.ForceAll, Vehicles: ids}

	var body wireSolveResponse
	if err := c.callJSON(ctx, op, http.MethodPost, "/solve", payload, &body); err != nil {
		return nil, err
	}
	routes, err := body.toDomain()
	if err != nil {
		return nil, &ports.DecodeError{Op: op, Err: err}
	}
	return routes, nil
}

func (c *Client) callJSON(ctx context.Context, op, method, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}
	return c.call(ctx, op, method, path, bytes.NewReader(b), "application/json", out)
}
