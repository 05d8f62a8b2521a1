package view

import (
	"errors"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/swimtime"
)

type seedKey struct {
	athleteID string
	eventID   string
}

type splitKey struct {
	athleteID string
	distance  int
	stroke    model.Stroke
}

type seedEntry struct {
	seconds float64
	source  model.TimeSource
}

// seedIndex holds individual seeds and relay splits apart so one can never
// stand in for the other.
type seedIndex struct {
	individual map[seedKey]seedEntry
	splits     map[splitKey]seedEntry
}

// buildSeedIndex indexes the event times of eligible athletes. Manually
// entered times win over imported ones; otherwise the first time wins.
func buildSeedIndex(teams []model.Team, eligible map[string]string, events map[string]model.Event, warn func(Warning)) seedIndex {
	idx := seedIndex{
		individual: make(map[seedKey]seedEntry),
		splits:     make(map[splitKey]seedEntry),
	}
	for _, t := range teams {
		for _, a := range t.Athletes {
			if _, ok := eligible[a.ID]; !ok {
				continue
			}
			for _, et := range a.EventTimes {
				secs, err := resolveSeconds(et.Seconds, et.Time)
				if err != nil {
					warn(Warning{
						Kind:     WarnInvalidTime,
						RecordID: a.ID,
						EventID:  et.EventID,
						Message:  err.Error(),
					})
					continue
				}
				if !swimtime.Present(secs) {
					continue
				}
				entry := seedEntry{seconds: secs, source: et.Source}
				if !et.IsRelaySplit {
					k := seedKey{athleteID: a.ID, eventID: et.EventID}
					if prev, ok := idx.individual[k]; !ok || replaces(prev, entry) {
						idx.individual[k] = entry
					}
					continue
				}
				ev, ok := events[et.EventID]
				if !ok {
					continue
				}
				dist, stroke, ok := model.ParseEventName(ev.Name)
				if !ok {
					continue
				}
				k := splitKey{athleteID: a.ID, distance: dist, stroke: stroke}
				if prev, ok := idx.splits[k]; !ok || replaces(prev, entry) {
					idx.splits[k] = entry
				}
			}
		}
	}
	return idx
}

func replaces(prev, next seedEntry) bool {
	return prev.source != model.SourceManual && next.source == model.SourceManual
}

func (s seedIndex) seed(athleteID, eventID string) float64 {
	return s.individual[seedKey{athleteID: athleteID, eventID: eventID}].seconds
}

func (s seedIndex) split(athleteID string, distance int, stroke model.Stroke) float64 {
	return s.splits[splitKey{athleteID: athleteID, distance: distance, stroke: stroke}].seconds
}

// resolveSeconds prefers stored seconds and parses the text otherwise. A
// missing time is not an error.
func resolveSeconds(seconds float64, text string) (float64, error) {
	if swimtime.Present(seconds) {
		return seconds, nil
	}
	secs, err := swimtime.Parse(text)
	if errors.Is(err, model.ErrNoTime) {
		return 0, nil
	}
	return secs, err
}
