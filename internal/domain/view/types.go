// Package view composes the candidate set of a meet for one view mode.
//
// Compose selects the effective time of every lineup and relay entry
// (seed, override, or override falling back to seed), applies roster
// filters, per-athlete entry caps and sensitivity variants, and never
// modifies its input.
package view

import (
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/relay"
)

// Source tells where an effective time came from.
type Source string

// Time sources.
const (
	SourceNone     Source = ""
	SourceSeed     Source = "seed"
	SourceOverride Source = "override"
)

// Lineup is a composed individual or diving entry.
type Lineup struct {
	model.MeetLineup
	TeamID           string              `json:"team_id"`
	AthleteName      string              `json:"athlete_name"`
	Category         model.EventCategory `json:"category"`
	SeedSeconds      float64             `json:"seed_seconds,omitempty"`
	EffectiveSeconds float64             `json:"effective_seconds"`
	Source           Source              `json:"source"`
	Adjusted         bool                `json:"adjusted,omitempty"`
}

// Relay is a composed relay entry. MemberIDs always holds one slot per leg;
// unfilled slots are "".
type Relay struct {
	model.RelayEntry
	Config           relay.Config `json:"-"`
	MemberIDs        []string     `json:"member_ids"`
	LegSeconds       []float64    `json:"leg_seconds,omitempty"`
	SeedSeconds      float64      `json:"seed_seconds,omitempty"`
	EffectiveSeconds float64      `json:"effective_seconds"`
	Source           Source       `json:"source"`
	Adjusted         bool         `json:"adjusted,omitempty"`
}

// Team is a composed meet team with its resolved roster.
type Team struct {
	model.MeetTeam
	Name     string   `json:"name"`
	Roster   []string `json:"roster"`
	Swimmers int      `json:"swimmers"`
	Divers   int      `json:"divers"`
}

// View is the output of Compose.
type View struct {
	Mode             model.ViewMode `json:"mode"`
	Meet             model.Meet     `json:"meet"`
	Events           []model.Event  `json:"events"`
	Lineups          []Lineup       `json:"lineups"`
	Relays           []Relay        `json:"relays"`
	Teams            []Team         `json:"teams"`
	Warnings         []Warning      `json:"warnings,omitempty"`
	HasRealResults   bool           `json:"has_real_results"`
	HasSimulatedData bool           `json:"has_simulated_data"`

	eventsWithData model.IDSet
}

// HasData reports whether at least one candidate of the event carries an
// effective time in this view.
func (v View) HasData(eventID string) bool {
	return v.eventsWithData.Has(eventID)
}
