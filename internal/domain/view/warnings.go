package view

import (
	"errors"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// WarningKind classifies a per-record problem.
type WarningKind string

// Warning kinds. None of them aborts a computation.
const (
	WarnInvalidTime        WarningKind = "invalid_time_format"
	WarnRelayComposition   WarningKind = "inconsistent_relay_composition"
	WarnUnknownCategory    WarningKind = "unknown_event_category"
	WarnRosterLimit        WarningKind = "roster_limit_exceeded"
	WarnEventLimit         WarningKind = "event_limit_exceeded"
	WarnRelayLimit         WarningKind = "relay_limit_exceeded"
	WarnInvalidSensitivity WarningKind = "invalid_sensitivity"
)

// Warning records a problem isolated to one record.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	RecordID string      `json:"record_id,omitempty"`
	EventID  string      `json:"event_id,omitempty"`
	Message  string      `json:"message"`
}

// Err maps the warning back to the sentinel error of its kind, if any.
func (w Warning) Err() error {
	switch w.Kind {
	case WarnInvalidTime:
		return model.ErrInvalidTimeFormat
	case WarnRelayComposition:
		return model.ErrInconsistentRelayComposition
	case WarnUnknownCategory:
		return model.ErrUnknownEventCategory
	}
	return errors.New(string(w.Kind))
}
