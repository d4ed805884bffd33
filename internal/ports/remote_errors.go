package ports

import "fmt"

// NetworkError reports a request that could not complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response that carried no application error body.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Code, e.Body)
}

// AppError is a well-formed {"error": "..."} response. Message is meant for the operator.
type AppError struct {
	Op      string
	Status  int
	Message string
}

func (e *AppError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Message) }

// DecodeError reports a response body that does not match the expected schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: decode: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
