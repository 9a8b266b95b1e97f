package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrBadRequest    = errors.New("bad request")
	ErrNoCredentials = errors.New("no credentials available")
	// ErrStaleFlag means a conditional flag write lost to a concurrent run.
	ErrStaleFlag = errors.New("stale flag")
)
