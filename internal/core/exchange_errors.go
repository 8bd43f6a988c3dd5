package core

import "errors"

var (
	// ErrValidation indicates the caller supplied arguments that were rejected before any request was sent.
	ErrValidation = errors.New("invalid request")
	// ErrInsufficientBalance indicates the exchange rejected the action due to insufficient funds.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOrderNotFound indicates the order does not exist on exchange or is already closed.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderRejected indicates the order was rejected by exchange.
	ErrOrderRejected = errors.New("order rejected")
	// ErrUnauthorized indicates the request was not accepted as authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited indicates the exchange throttled the request.
	ErrRateLimited = errors.New("rate limited")
)
