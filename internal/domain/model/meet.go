package model

import (
	"fmt"
	"strings"
)

// MeetType selects caps and the default event order.
type MeetType string

// Meet formats.
const (
	MeetChampionship MeetType = "championship"
	MeetDual         MeetType = "dual"
)

// ViewMode selects which time source feeds ranking.
type ViewMode string

// View modes.
const (
	ViewSimulated ViewMode = "simulated"
	ViewReal      ViewMode = "real"
	ViewHybrid    ViewMode = "hybrid"
)

// ViewModes lists every mode in a fixed order.
var ViewModes = []ViewMode{ViewSimulated, ViewReal, ViewHybrid}

// ParseViewMode accepts the tokens "simulated", "real" and "hybrid".
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewSimulated, ViewReal, ViewHybrid:
		return m, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownViewMode)
}

// Meet is the configuration aggregate of one meet. The string fields holding
// JSON are parsed by the engine at its boundary.
type Meet struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	MeetType            MeetType `json:"meet_type"`
	MaxAthletes         int      `json:"max_athletes"`
	DiverRatio          float64  `json:"diver_ratio"`
	MaxIndivEvents      int      `json:"max_indiv_events"`
	MaxRelays           int      `json:"max_relays"`
	MaxDivingEvents     int      `json:"max_diving_events"`
	ScoringPlaces       int      `json:"scoring_places"`
	ScoringStartPoints  int      `json:"scoring_start_points"`
	RelayMultiplier     float64  `json:"relay_multiplier"`
	IndividualScoring   string   `json:"individual_scoring,omitempty"`
	RelayScoring        string   `json:"relay_scoring,omitempty"`
	SelectedEvents      string   `json:"selected_events,omitempty"`
	EventOrder          string   `json:"event_order,omitempty"`
	RealResultsEventIDs string   `json:"real_results_event_ids,omitempty"`
	ViewMode            ViewMode `json:"view_mode,omitempty"`
}

// Defaults holds the per-format caps and scoring defaults.
type Defaults struct {
	MaxAthletes        int
	DiverRatio         float64
	MaxIndivEvents     int
	MaxRelays          int
	MaxDivingEvents    int
	ScoringPlaces      int
	ScoringStartPoints int
	RelayMultiplier    float64
}

// DefaultsFor returns the defaults of a meet format. Unknown formats use the
// championship defaults.
func DefaultsFor(t MeetType) Defaults {
	if t == MeetDual {
		return Defaults{
			MaxAthletes:        0,
			DiverRatio:         1,
			MaxIndivEvents:     3,
			MaxRelays:          4,
			MaxDivingEvents:    2,
			ScoringPlaces:      5,
			ScoringStartPoints: 9,
			RelayMultiplier:    2,
		}
	}
	return Defaults{
		MaxAthletes:        18,
		DiverRatio:         0.5,
		MaxIndivEvents:     3,
		MaxRelays:          4,
		MaxDivingEvents:    3,
		ScoringPlaces:      16,
		ScoringStartPoints: 20,
		RelayMultiplier:    2,
	}
}

// WithDefaults returns a copy of m with zero caps and scoring values filled
// from its format defaults.
func (m Meet) WithDefaults() Meet {
	d := DefaultsFor(m.MeetType)
	if m.MeetType == "" {
		m.MeetType = MeetChampionship
	}
	if m.MaxAthletes == 0 {
		m.MaxAthletes = d.MaxAthletes
	}
	if m.DiverRatio == 0 {
		m.DiverRatio = d.DiverRatio
	}
	if m.MaxIndivEvents == 0 {
		m.MaxIndivEvents = d.MaxIndivEvents
	}
	if m.MaxRelays == 0 {
		m.MaxRelays = d.MaxRelays
	}
	if m.MaxDivingEvents == 0 {
		m.MaxDivingEvents = d.MaxDivingEvents
	}
	if m.ScoringPlaces == 0 {
		m.ScoringPlaces = d.ScoringPlaces
	}
	if m.ScoringStartPoints == 0 {
		m.ScoringStartPoints = d.ScoringStartPoints
	}
	if m.RelayMultiplier == 0 {
		m.RelayMultiplier = d.RelayMultiplier
	}
	if m.ViewMode == "" {
		m.ViewMode = ViewHybrid
	}
	return m
}
