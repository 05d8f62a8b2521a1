// Package relay derives leg structure from relay event names and decodes
// relay member lists.
package relay

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// Relay shape constants.
const (
	NumLegs         = 4
	SegmentDistance = 50
	defaultDistance = 200
)

// medleyOrder is the fixed leg order of a medley relay.
var medleyOrder = []model.Stroke{model.StrokeBack, model.StrokeBreast, model.StrokeFly, model.StrokeFree}

// Config describes the legs of a relay event.
type Config struct {
	NumLegs        int
	TotalDistance  int
	DistancePerLeg int
	// Strokes holds one stroke per leg for medley relays, nil for freestyle.
	Strokes []model.Stroke
}

// ConfigFor resolves the relay configuration from an event name.
func ConfigFor(eventName string) Config {
	total := defaultDistance
	switch {
	case strings.Contains(eventName, "400"):
		total = 400
	case strings.Contains(eventName, "800"):
		total = 800
	}
	c := Config{
		NumLegs:        NumLegs,
		TotalDistance:  total,
		DistancePerLeg: total / NumLegs,
	}
	if strings.Contains(strings.ToLower(eventName), "medley") {
		c.Strokes = append([]model.Stroke(nil), medleyOrder...)
	}
	return c
}

// IsMedley reports whether legs swim different strokes.
func (c Config) IsMedley() bool { return c.Strokes != nil }

// LegStroke returns the stroke swum on leg (0-based).
func (c Config) LegStroke(leg int) model.Stroke {
	if leg >= 0 && leg < len(c.Strokes) {
		return c.Strokes[leg]
	}
	return model.StrokeFree
}

// SegmentsPerLeg is the number of 50-unit splits expected per leg.
func SegmentsPerLeg(distancePerLeg int) int {
	return max(1, int(math.Round(float64(distancePerLeg)/SegmentDistance)))
}

// DistanceLabels lists the split markers of one leg: 50, 100, ... up to
// distancePerLeg.
func DistanceLabels(distancePerLeg int) []int {
	var labels []int
	for d := SegmentDistance; d <= distancePerLeg; d += SegmentDistance {
		labels = append(labels, d)
	}
	if len(labels) == 0 && distancePerLeg > 0 {
		labels = append(labels, distancePerLeg)
	}
	return labels
}

// LegSplits maps cumulative split times of a whole relay onto per-leg
// times. Legs without enough splits are returned as zero.
func LegSplits(cumulative []float64, distancePerLeg int) []float64 {
	seg := SegmentsPerLeg(distancePerLeg)
	legs := make([]float64, NumLegs)
	prev := 0.0
	for i := range legs {
		end := (i+1)*seg - 1
		if end >= len(cumulative) {
			break
		}
		legs[i] = cumulative[end] - prev
		prev = cumulative[end]
	}
	return legs
}

// ParseMembers decodes a serialized member list: a JSON array of athlete
// ids (strings or numbers) with null marking an unfilled slot. Unfilled
// slots are returned as "".
func ParseMembers(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var slots []any
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, fmt.Errorf("relay members: %v: %w", err, model.ErrMalformedConfiguration)
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		switch v := s.(type) {
		case nil:
		case string:
			out[i] = strings.TrimSpace(v)
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("relay members: slot %d: %w", i, model.ErrMalformedConfiguration)
		}
	}
	return out, nil
}
