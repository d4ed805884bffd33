package dto

import (
	"bytes"
	"delivery-route-console/internal/domain"
	"encoding/json"
)

type CreateOrderRequest struct {
	ExternalID  string   `json:"external_id"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Volume      float64  `json:"volume"`
	WindowStart *float64 `json:"window_start"`
	WindowEnd   *float64 `json:"window_end"`
}

// OptionalFloat tells an absent member from an explicit null.
type OptionalFloat struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateOrderRequest is a partial update. Coordinates change only when both
// are given; a window bound can be cleared with null.
type UpdateOrderRequest struct {
	ExternalID  *string       `json:"external_id"`
	Address     *string       `json:"address"`
	Latitude    *float64      `json:"latitude"`
	Longitude   *float64      `json:"longitude"`
	Volume      *float64      `json:"volume"`
	WindowStart OptionalFloat `json:"window_start"`
	WindowEnd   OptionalFloat `json:"window_end"`
}

type OrderResponse struct {
	ID          int64    `json:"id"`
	ExternalID  string   `json:"external_id"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Volume      float64  `json:"volume"`
	WindowStart *float64 `json:"window_start"`
	WindowEnd   *float64 `json:"window_end"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		ExternalID:  o.ExternalID,
		Latitude:    o.Latitude,
		Longitude:   o.Longitude,
		Volume:      o.Volume,
		WindowStart: o.WindowStart,
		WindowEnd:   o.WindowEnd,
	}
	if o.Address != "" {
		addr := o.Address
		res.Address = &addr
	}
	return res
}

func NewOrderList(os []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for _, o := range os {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
