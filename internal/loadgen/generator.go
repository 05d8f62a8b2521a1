// Package loadgen generates synthetic meets, submits them to a running
// service and checks the standings it serves.
package loadgen

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/swimtime"
)

// eventTemplate is a generated event with the seed range its swimmers draw from.
type eventTemplate struct {
	key      string
	name     string
	base     float64
	spread   float64
	relay    bool
	diving   bool
	legEvent string
}

var eventTemplates = []eventTemplate{
	{key: "free50", name: "50 Free", base: 20.5, spread: 3},
	{key: "free100", name: "100 Free", base: 44.5, spread: 6},
	{key: "back100", name: "100 Back", base: 48.0, spread: 7},
	{key: "relay200", name: "200 Free Relay", relay: true, legEvent: "free50"},
	{key: "dive1m", name: "1M Diving", base: 240, spread: 90, diving: true},
}

// GenerateMeet builds one championship meet snapshot. The same rng state
// always yields the same meet apart from the ids.
func GenerateMeet(r *rand.Rand, teams, athletesPerTeam int) model.Snapshot {
	meetID := uuid.NewString()
	snap := model.Snapshot{
		Meet: model.Meet{
			ID:       meetID,
			Name:     fmt.Sprintf("Load Invite %s", meetID[:8]),
			MeetType: model.MeetChampionship,
		},
	}

	ids := make(map[string]string, len(eventTemplates))
	for i, tmpl := range eventTemplates {
		id := uuid.NewString()
		ids[tmpl.key] = id
		cat := model.CategoryIndividual
		switch {
		case tmpl.relay:
			cat = model.CategoryRelay
		case tmpl.diving:
			cat = model.CategoryDiving
		}
		snap.Events = append(snap.Events, model.Event{ID: id, Name: tmpl.name, Category: cat, SortKey: i})
	}
	swimEvents := lo.Filter(eventTemplates, func(s eventTemplate, _ int) bool { return !s.relay && !s.diving })

	for t := 0; t < teams; t++ {
		team := model.Team{ID: uuid.NewString(), Name: fmt.Sprintf("Team %c", 'A'+rune(t))}
		var swimmers []string

		for a := 0; a < athletesPerTeam; a++ {
			ath := model.Athlete{
				ID:        uuid.NewString(),
				TeamID:    team.ID,
				Name:      fmt.Sprintf("%s Swimmer %d", team.Name, a+1),
				IsEnabled: true,
			}
			for _, tmpl := range swimEvents {
				ath.EventTimes = append(ath.EventTimes, seedTime(r, ath.ID, ids[tmpl.key], tmpl, false))
			}
			legTmpl, _ := lo.Find(eventTemplates, func(s eventTemplate) bool { return s.key == "free50" })
			ath.EventTimes = append(ath.EventTimes, seedTime(r, ath.ID, ids["free50"], legTmpl, true))
			team.Athletes = append(team.Athletes, ath)
			swimmers = append(swimmers, ath.ID)

			// two individual swims each, rotating through the events
			for k := 0; k < 2; k++ {
				tmpl := swimEvents[(a+k)%len(swimEvents)]
				snap.Lineups = append(snap.Lineups, model.MeetLineup{
					ID: uuid.NewString(), AthleteID: ath.ID, EventID: ids[tmpl.key],
				})
			}
		}

		diver := model.Athlete{
			ID:        uuid.NewString(),
			TeamID:    team.ID,
			Name:      team.Name + " Diver",
			IsDiver:   true,
			IsEnabled: true,
		}
		diveTmpl := eventTemplates[len(eventTemplates)-1]
		diver.EventTimes = []model.EventTime{seedTime(r, diver.ID, ids[diveTmpl.key], diveTmpl, false)}
		team.Athletes = append(team.Athletes, diver)
		snap.Lineups = append(snap.Lineups, model.MeetLineup{
			ID: uuid.NewString(), AthleteID: diver.ID, EventID: ids[diveTmpl.key],
		})

		members, _ := json.Marshal(swimmers[:4])
		snap.RelayEntries = append(snap.RelayEntries, model.RelayEntry{
			ID: uuid.NewString(), TeamID: team.ID, EventID: ids["relay200"], Members: string(members),
		})

		selected, _ := json.Marshal(append(swimmers, diver.ID))
		snap.MeetTeams = append(snap.MeetTeams, model.MeetTeam{TeamID: team.ID, SelectedAthletes: string(selected)})
		snap.Teams = append(snap.Teams, team)
	}

	// the first team's first lineup carries an official time so every view
	// mode has data
	if len(snap.Lineups) > 0 {
		first := snap.Lineups[0]
		seed, _ := lo.Find(snap.Teams[0].Athletes[0].EventTimes, func(et model.EventTime) bool {
			return et.EventID == first.EventID && !et.IsRelaySplit
		})
		snap.Lineups[0].OverrideTime = swimtime.Format(swimtime.Scale(seed.Seconds, 0.99))
	}
	return snap
}

func seedTime(r *rand.Rand, athleteID, eventID string, tmpl eventTemplate, split bool) model.EventTime {
	sec := tmpl.base + r.Float64()*tmpl.spread
	if split {
		sec -= 0.6
	}
	text := swimtime.Format(sec)
	if tmpl.diving {
		text = swimtime.FormatScore(sec)
	}
	// Seconds is the value the text parses back to.
	parsed, _ := swimtime.Parse(text)
	return model.EventTime{
		AthleteID:    athleteID,
		EventID:      eventID,
		Time:         text,
		Seconds:      parsed,
		IsRelaySplit: split,
		Source:       model.SourceImported,
	}
}
