// Package types contains the shapes shared by the service and its API.
package types

import "strings"

// PutResult acknowledges a stored snapshot.
type PutResult struct {
	MeetID       string `json:"meet_id"`
	SubmissionID string `json:"submission_id"`
	Revision     int64  `json:"revision,omitempty"`
	Duplicate    bool   `json:"duplicate"`
}

// Status renders the acknowledgement the way the API reports it.
func (r PutResult) Status() string {
	if r.Duplicate {
		return "duplicate"
	}
	return "accepted"
}

// Availability tells which view modes have something to show for a meet.
type Availability struct {
	MeetID           string `json:"meet_id"`
	Revision         int64  `json:"revision"`
	HasRealResults   bool   `json:"hasRealResults"`
	HasSimulatedData bool   `json:"hasSimulatedData"`
}

// Modes lists the view modes worth offering, simulated first.
func (a Availability) Modes() []string {
	var out []string
	if a.HasSimulatedData {
		out = append(out, "simulated")
	}
	if a.HasRealResults {
		out = append(out, "real")
	}
	if a.HasSimulatedData || a.HasRealResults {
		out = append(out, "hybrid")
	}
	return out
}

// String is a compact form used in logs.
func (a Availability) String() string {
	return a.MeetID + "[" + strings.Join(a.Modes(), ",") + "]"
}
