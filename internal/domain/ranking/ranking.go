// Package ranking places composed candidates per event, awards points and
// totals them per team.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/scoring"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/swimtime"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/view"
)

// Row is one competitor in an event result. Untimed competitors are kept
// with Scored false and no place.
type Row struct {
	Place     int         `json:"place,omitempty"`
	EntryID   string      `json:"entry_id"`
	AthleteID string      `json:"athlete_id,omitempty"`
	TeamID    string      `json:"team_id"`
	Name      string      `json:"name"`
	TeamName  string      `json:"team_name"`
	Time      string      `json:"time,omitempty"`
	Seconds   float64     `json:"seconds,omitempty"`
	Source    view.Source `json:"source,omitempty"`
	Adjusted  bool        `json:"adjusted,omitempty"`
	Points    int         `json:"points"`
	Scored    bool        `json:"scored"`
}

// EventResult is the ranked result of one event.
type EventResult struct {
	Event   model.Event `json:"event"`
	HasData bool        `json:"has_data"`
	Rows    []Row       `json:"rows"`
}

// TeamStanding is a team's total. Teams with equal totals share a rank.
type TeamStanding struct {
	Rank             int    `json:"rank"`
	TeamID           string `json:"team_id"`
	Name             string `json:"name"`
	Points           int    `json:"points"`
	IndividualPoints int    `json:"individual_points"`
	DivingPoints     int    `json:"diving_points"`
	RelayPoints      int    `json:"relay_points"`
}

// Result is the scored outcome of one view.
type Result struct {
	MeetID           string         `json:"meet_id"`
	Mode             model.ViewMode `json:"mode"`
	Events           []EventResult  `json:"events"`
	Standings        []TeamStanding `json:"standings"`
	Warnings         []view.Warning `json:"warnings,omitempty"`
	HasRealResults   bool           `json:"has_real_results"`
	HasSimulatedData bool           `json:"has_simulated_data"`
}

// Event returns the result of one event.
func (r Result) Event(eventID string) (EventResult, bool) {
	return lo.Find(r.Events, func(e EventResult) bool { return e.Event.ID == eventID })
}

type award struct {
	teamID   string
	category model.EventCategory
	points   int
}

// Score ranks every event of v in running order and aggregates team totals.
// Relays score from the relay table only; places beyond a table score zero.
func Score(v view.View, table scoring.Table) Result {
	teamNames := lo.SliceToMap(v.Teams, func(t view.Team) (string, string) { return t.TeamID, t.Name })

	lineups := lo.GroupBy(v.Lineups, func(l view.Lineup) string { return l.EventID })
	relays := lo.GroupBy(v.Relays, func(r view.Relay) string { return r.EventID })

	res := Result{
		MeetID:           v.Meet.ID,
		Mode:             v.Mode,
		Events:           make([]EventResult, 0, len(v.Events)),
		Warnings:         v.Warnings,
		HasRealResults:   v.HasRealResults,
		HasSimulatedData: v.HasSimulatedData,
	}
	var awards []award

	for _, ev := range v.Events {
		var rows []Row
		if ev.Category == model.CategoryRelay {
			rows = lo.Map(relays[ev.ID], func(r view.Relay, _ int) Row {
				return Row{
					EntryID:  r.ID,
					TeamID:   r.TeamID,
					Name:     teamNames[r.TeamID],
					TeamName: teamNames[r.TeamID],
					Seconds:  r.EffectiveSeconds,
					Source:   r.Source,
					Adjusted: r.Adjusted,
				}
			})
		} else {
			rows = lo.Map(lineups[ev.ID], func(l view.Lineup, _ int) Row {
				return Row{
					EntryID:   l.ID,
					AthleteID: l.AthleteID,
					TeamID:    l.TeamID,
					Name:      l.AthleteName,
					TeamName:  teamNames[l.TeamID],
					Seconds:   l.EffectiveSeconds,
					Source:    l.Source,
					Adjusted:  l.Adjusted,
				}
			})
		}

		rows = Place(rows, ev.Category, table)
		for _, r := range rows {
			if r.Points > 0 {
				awards = append(awards, award{teamID: r.TeamID, category: ev.Category, points: r.Points})
			}
		}
		res.Events = append(res.Events, EventResult{Event: ev, HasData: v.HasData(ev.ID), Rows: rows})
	}

	res.Standings = standings(v.Teams, awards)
	return res
}

// Place sorts rows best first and assigns places and points. Rows with equal
// times share a place and its points; the next distinct time takes the place
// after all tied rows. Untimed rows follow unplaced.
func Place(rows []Row, category model.EventCategory, table scoring.Table) []Row {
	timed, untimed := lo.FilterReject(rows, func(r Row, _ int) bool { return swimtime.Present(r.Seconds) })

	better := swimtime.Compare
	if category == model.CategoryDiving {
		better = func(a, b float64) int { return swimtime.Compare(b, a) }
	}
	slices.SortStableFunc(timed, func(a, b Row) int {
		if c := better(a.Seconds, b.Seconds); c != 0 {
			return c
		}
		return byName(a, b)
	})

	relay := category == model.CategoryRelay
	for i := range timed {
		timed[i].Place = i + 1
		if i > 0 && better(timed[i-1].Seconds, timed[i].Seconds) == 0 {
			timed[i].Place = timed[i-1].Place
		}
		timed[i].Points = table.Points(timed[i].Place, relay)
		timed[i].Scored = true
		timed[i].Time = formatResult(timed[i].Seconds, category)
	}

	slices.SortStableFunc(untimed, byName)
	for i := range untimed {
		untimed[i].Place, untimed[i].Points, untimed[i].Scored = 0, 0, false
		untimed[i].Time = ""
	}
	return append(timed, untimed...)
}

func byName(a, b Row) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.EntryID, b.EntryID),
	)
}

// formatResult renders a race time, or a dive score with two decimals.
func formatResult(seconds float64, category model.EventCategory) string {
	if category == model.CategoryDiving {
		return swimtime.FormatScore(seconds)
	}
	return swimtime.Format(seconds)
}

func standings(teams []view.Team, awards []award) []TeamStanding {
	byTeam := lo.GroupBy(awards, func(a award) string { return a.teamID })
	sum := func(as []award, cat model.EventCategory) int {
		return lo.SumBy(as, func(a award) int {
			if a.category != cat {
				return 0
			}
			return a.points
		})
	}

	out := make([]TeamStanding, 0, len(teams))
	for _, t := range teams {
		as := byTeam[t.TeamID]
		s := TeamStanding{
			TeamID:           t.TeamID,
			Name:             t.Name,
			IndividualPoints: sum(as, model.CategoryIndividual),
			DivingPoints:     sum(as, model.CategoryDiving),
			RelayPoints:      sum(as, model.CategoryRelay),
		}
		s.Points = s.IndividualPoints + s.DivingPoints + s.RelayPoints
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b TeamStanding) int {
		return cmp.Or(
			cmp.Compare(b.Points, a.Points),
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.TeamID, b.TeamID),
		)
	})
	for i := range out {
		out[i].Rank = i + 1
		if i > 0 && out[i-1].Points == out[i].Points {
			out[i].Rank = out[i-1].Rank
		}
	}
	return out
}
