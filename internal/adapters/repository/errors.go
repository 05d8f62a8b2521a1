package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound        = errors.New("meet not found")
	ErrEmptyMeetID     = errors.New("empty meet id")
	ErrUnknownStore    = errors.New("unknown store kind")
	ErrCorruptSnapshot = errors.New("corrupt stored snapshot")
	ErrClosed          = errors.New("store closed")
)
