package service

import "errors"

// Sentinel error kinds returned by the Service.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrBackpressure    = errors.New("recompute queue full")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrEventNotFound   = errors.New("event not found")
)
