// Package model contains domain records passed between layers.
package model

// TimeSource tags where an EventTime came from.
type TimeSource string

// Known time sources.
const (
	SourceManual   TimeSource = "manual"
	SourceImported TimeSource = "imported"
)

// Team is a club or school competing in meets.
type Team struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Athletes []Athlete `json:"athletes"`
}

// Athlete belongs to exactly one team.
type Athlete struct {
	ID         string      `json:"id"`
	TeamID     string      `json:"team_id"`
	Name       string      `json:"name"`
	IsDiver    bool        `json:"is_diver"`
	IsEnabled  bool        `json:"is_enabled"`
	EventTimes []EventTime `json:"event_times,omitempty"`
}

// EventTime is an athlete's seed time for one event. Relay splits are kept
// apart from individual seeds by IsRelaySplit.
type EventTime struct {
	AthleteID    string     `json:"athlete_id"`
	EventID      string     `json:"event_id"`
	Time         string     `json:"time"`
	Seconds      float64    `json:"seconds"`
	IsRelaySplit bool       `json:"is_relay_split"`
	Source       TimeSource `json:"source,omitempty"`
}

// MeetTeam joins a team to a meet. SelectedAthletes is a JSON array of
// athlete ids and is the only source of roster participation.
type MeetTeam struct {
	TeamID               string  `json:"team_id"`
	SelectedAthletes     string  `json:"selected_athletes"`
	SensitivityAthleteID string  `json:"sensitivity_athlete_id,omitempty"`
	SensitivityVariant   string  `json:"sensitivity_variant,omitempty"`
	SensitivityPercent   float64 `json:"sensitivity_percent,omitempty"`
}

// MeetLineup is an athlete's confirmed entry in an individual or diving event.
type MeetLineup struct {
	ID               string  `json:"id"`
	AthleteID        string  `json:"athlete_id"`
	EventID          string  `json:"event_id"`
	OverrideTime     string  `json:"override_time,omitempty"`
	OverrideSeconds  float64 `json:"override_seconds,omitempty"`
	FinalTimeSeconds float64 `json:"final_time_seconds,omitempty"`
}

// RelayEntry is a team's relay assignment. Members is a JSON array of
// nullable athlete ids in leg order.
type RelayEntry struct {
	ID               string  `json:"id"`
	TeamID           string  `json:"team_id"`
	EventID          string  `json:"event_id"`
	Members          string  `json:"members"`
	OverrideTime     string  `json:"override_time,omitempty"`
	OverrideSeconds  float64 `json:"override_seconds,omitempty"`
	FinalTimeSeconds float64 `json:"final_time_seconds,omitempty"`
}

// Snapshot is the already loaded state of one meet handed to the engine.
type Snapshot struct {
	Meet         Meet         `json:"meet"`
	Events       []Event      `json:"events"`
	Teams        []Team       `json:"teams"`
	MeetTeams    []MeetTeam   `json:"meet_teams"`
	Lineups      []MeetLineup `json:"lineups"`
	RelayEntries []RelayEntry `json:"relay_entries"`
}

// EventByID indexes the snapshot events.
func (s *Snapshot) EventByID() map[string]Event {
	out := make(map[string]Event, len(s.Events))
	for _, e := range s.Events {
		out[e.ID] = e
	}
	return out
}

// AthleteByID indexes every athlete of every team.
func (s *Snapshot) AthleteByID() map[string]Athlete {
	out := make(map[string]Athlete)
	for _, t := range s.Teams {
		for _, a := range t.Athletes {
			if a.TeamID == "" {
				a.TeamID = t.ID
			}
			out[a.ID] = a
		}
	}
	return out
}

// TeamNames maps team ids to display names.
func (s *Snapshot) TeamNames() map[string]string {
	out := make(map[string]string, len(s.Teams))
	for _, t := range s.Teams {
		out[t.ID] = t.Name
	}
	return out
}

// RecomputeJob asks the worker pool to compute one view of a stored meet.
type RecomputeJob struct {
	JobID    string
	MeetID   string
	Mode     ViewMode
	Revision int64
}
