package remote

import (
	"bytes"
	"context"
	"delivery-route-console/internal/platform/obs"
	"delivery-route-console/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
	contentType string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	reqID := obs.RequestID(ctx)
	if reqID == "" {
		reqID = obs.NewRequestID()
	}
	req.Header.Set(obs.RequestIDHeader, reqID)

	return req, nil
}

// call performs one round trip and decodes a 2xx body into out (nil skips decoding).
// Failures come back as the typed errors of the ports package.
func (c *Client) call(
	ctx context.Context,
	op, method, path string,
	body io.Reader,
	contentType string,
	out any,
) error {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return &ports.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ports.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if msg, ok := appErrorMessage(data); ok {
		return &ports.AppError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ports.StatusError{
			Op:   op,
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := decodeStrict(data, out); err != nil {
		return &ports.DecodeError{Op: op, Err: err}
	}
	return nil
}

// appErrorMessage reports whether data is a JSON object carrying a string "error" member.
func appErrorMessage(data []byte) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var body struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil || body.Error == nil {
		return "", false
	}
	return *body.Error, true
}

// decodeStrict decodes exactly one JSON value and rejects anything after it.
func decodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
