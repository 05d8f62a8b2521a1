package model

import "errors"

// Sentinel error kinds shared by the engine packages. Callers match them
// with errors.Is.
var (
	ErrInvalidTimeFormat            = errors.New("invalid time format")
	ErrNoTime                       = errors.New("no time")
	ErrMalformedConfiguration       = errors.New("malformed configuration")
	ErrInconsistentRelayComposition = errors.New("inconsistent relay composition")
	ErrUnknownEventCategory         = errors.New("unknown event category")
	ErrUnknownViewMode              = errors.New("unknown view mode")
)
