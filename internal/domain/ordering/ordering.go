// Package ordering resolves the running order of a meet's events.
package ordering

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// ChampionshipOrder is the default running order of a championship meet,
// by event name.
var ChampionshipOrder = []string{
	"200 Medley Relay",
	"800 Free Relay",
	"500 Free",
	"200 IM",
	"50 Free",
	"1M Diving",
	"200 Free Relay",
	"400 IM",
	"100 Fly",
	"200 Free",
	"100 Breast",
	"100 Back",
	"3M Diving",
	"400 Medley Relay",
	"1650 Free",
	"200 Back",
	"100 Free",
	"200 Breast",
	"200 Fly",
	"Platform Diving",
	"400 Free Relay",
}

var championshipIndex = func() map[string]int {
	idx := make(map[string]int, len(ChampionshipOrder))
	for i, name := range ChampionshipOrder {
		idx[NameKey(name)] = i
	}
	return idx
}()

// EventOrder is an explicit running order as a sequence of event ids.
type EventOrder []string

// ParseEventOrder decodes a serialized event order. An empty input returns
// a nil order.
func ParseEventOrder(raw string) (EventOrder, error) {
	ids, err := model.ParseIDList(raw)
	if err != nil {
		return nil, err
	}
	return EventOrder(ids), nil
}

// Sort returns events in running order. Every input event appears exactly
// once in the output; the input slice is not modified.
//
// With an explicit order, listed events come first in that order and the
// rest follow by name. Without one, championship meets use
// ChampionshipOrder (unknown names after, by name) and dual meets sort by
// name.
func Sort(events []model.Event, order EventOrder, meetType model.MeetType) []model.Event {
	out := slices.Clone(events)

	var rank func(e model.Event) (int, bool)
	switch {
	case len(order) > 0:
		pos := make(map[string]int, len(order))
		for i, id := range order {
			if _, dup := pos[id]; !dup {
				pos[id] = i
			}
		}
		rank = func(e model.Event) (int, bool) {
			p, ok := pos[e.ID]
			return p, ok
		}
	case meetType == model.MeetDual:
		rank = func(model.Event) (int, bool) { return 0, false }
	default:
		rank = func(e model.Event) (int, bool) {
			p, ok := championshipIndex[NameKey(e.Name)]
			return p, ok
		}
	}

	slices.SortStableFunc(out, func(a, b model.Event) int {
		ra, okA := rank(a)
		rb, okB := rank(b)
		switch {
		case okA && okB:
			if c := cmp.Compare(ra, rb); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return byName(a, b)
	})
	return out
}

func byName(a, b model.Event) int {
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SortKey, b.SortKey); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

var synonyms = map[string]string{
	"freestyle":        "free",
	"backstroke":       "back",
	"breaststroke":     "breast",
	"butterfly":        "fly",
	"individualmedley": "im",
}

var dropped = map[string]bool{
	"yard": true, "yards": true, "yd": true, "y": true,
	"meter": true, "meters": true, "metre": true, "m": true,
	"scy": true, "scm": true, "lcm": true, "springboard": true,
}

// NameKey normalises an event name for matching against
// ChampionshipOrder: case, spacing, units and stroke synonyms are ignored,
// and "1 Meter"/"3 Meter" collapse to "1m"/"3m".
func NameKey(name string) string {
	lower := strings.ReplaceAll(strings.ToLower(name), "individual medley", "individualmedley")
	toks := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if (t == "1" || t == "3") && i+1 < len(toks) && isMeterUnit(toks[i+1]) {
			out = append(out, t+"m")
			i++
			continue
		}
		if s, ok := synonyms[t]; ok {
			t = s
		}
		if dropped[t] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

func isMeterUnit(t string) bool {
	return t == "m" || t == "meter" || t == "meters" || t == "metre"
}
