// Package scoring generates the place-to-points tables used to score a meet.
package scoring

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// maxRelayPlaces caps the relay table regardless of the individual depth.
const maxRelayPlaces = 8

// Deductions from the start points for the A/B/C-final (24) and A/B-final
// (16) curves. The gap widens at each final boundary.
var (
	deductions24 = []int{0, 4, 5, 6, 7, 8, 9, 10, 12, 15, 16, 17, 18, 19, 20, 21, 23, 25, 26, 27, 28, 29, 30, 31}
	deductions16 = []int{0, 3, 4, 5, 6, 7, 8, 9, 11, 13, 14, 15, 16, 17, 18, 19}
)

// Table maps finishing place to points for individual and relay events.
type Table struct {
	Individual map[int]int `json:"individual"`
	Relay      map[int]int `json:"relay"`
}

// Points returns the points for place. Places outside the table score zero.
func (t Table) Points(place int, relay bool) int {
	if relay {
		return t.Relay[place]
	}
	return t.Individual[place]
}

// Places returns the deepest scoring place of the selected table.
func (t Table) Places(relay bool) int {
	m := t.Individual
	if relay {
		m = t.Relay
	}
	deepest := 0
	for p := range m {
		if p > deepest {
			deepest = p
		}
	}
	return deepest
}

// Generate builds the individual and relay tables for a meet configuration.
// The result depends only on its arguments.
func Generate(places, startPoints int, relayMultiplier float64) Table {
	t := Table{
		Individual: make(map[int]int, max(places, 0)),
		Relay:      make(map[int]int, maxRelayPlaces),
	}
	if places <= 0 {
		return t
	}

	var deductions []int
	switch places {
	case len(deductions24):
		deductions = deductions24
	case len(deductions16):
		deductions = deductions16
	}
	for place := 1; place <= places; place++ {
		if deductions != nil {
			t.Individual[place] = max(0, startPoints-deductions[place-1])
			continue
		}
		t.Individual[place] = max(1, startPoints-(place-1))
	}

	mult := decimal.NewFromFloat(relayMultiplier)
	for place := 1; place <= min(places, maxRelayPlaces); place++ {
		t.Relay[place] = int(decimal.NewFromInt(int64(t.Individual[place])).Mul(mult).Round(0).IntPart())
	}
	return t
}

// ParsePoints decodes a serialized place->points map. Both a JSON object
// keyed by place ({"1":20,"2":17}) and a JSON array in place order are
// accepted. An empty input returns a nil map.
func ParsePoints(raw string) (map[int]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	out := make(map[int]int)
	if strings.HasPrefix(raw, "[") {
		var list []float64
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("scoring points: %v: %w", err, model.ErrMalformedConfiguration)
		}
		for i, p := range list {
			out[i+1] = roundPoints(p)
		}
		return out, nil
	}

	var obj map[string]float64
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("scoring points: %v: %w", err, model.ErrMalformedConfiguration)
	}
	for k, p := range obj {
		place, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || place < 1 {
			return nil, fmt.Errorf("scoring points: place %q: %w", k, model.ErrMalformedConfiguration)
		}
		out[place] = roundPoints(p)
	}
	return out, nil
}

// EncodePoints serializes a table half as a JSON object keyed by place.
func EncodePoints(points map[int]int) string {
	places := make([]int, 0, len(points))
	for p := range points {
		places = append(places, p)
	}
	sort.Ints(places)
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range places {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%d", strconv.Itoa(p), points[p])
	}
	b.WriteByte('}')
	return b.String()
}

func roundPoints(p float64) int {
	return int(decimal.NewFromFloat(p).Round(0).IntPart())
}

// Memo caches generated tables per configuration. The zero value is ready
// to use and safe for concurrent use.
type Memo struct {
	mu     sync.Mutex
	tables map[memoKey]Table
}

type memoKey struct {
	places     int
	start      int
	multiplier float64
}

// Generate returns the memoized table for the configuration.
func (m *Memo) Generate(places, startPoints int, relayMultiplier float64) Table {
	if m == nil {
		return Generate(places, startPoints, relayMultiplier)
	}
	k := memoKey{places, startPoints, relayMultiplier}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[k]; ok {
		return t
	}
	if m.tables == nil {
		m.tables = make(map[memoKey]Table)
	}
	t := Generate(places, startPoints, relayMultiplier)
	m.tables[k] = t
	return t
}

// ForMeet resolves the tables of a meet: stored tables when present, a
// generated table for whichever half is missing.
func (m *Memo) ForMeet(meet model.Meet) (Table, error) {
	meet = meet.WithDefaults()
	ind, err := ParsePoints(meet.IndividualScoring)
	if err != nil {
		return Table{}, fmt.Errorf("individual: %w", err)
	}
	rel, err := ParsePoints(meet.RelayScoring)
	if err != nil {
		return Table{}, fmt.Errorf("relay: %w", err)
	}
	if ind != nil && rel != nil {
		return Table{Individual: ind, Relay: rel}, nil
	}

	gen := m.Generate(meet.ScoringPlaces, meet.ScoringStartPoints, meet.RelayMultiplier)
	t := Table{Individual: ind, Relay: rel}
	if t.Individual == nil {
		t.Individual = gen.Individual
	}
	if t.Relay == nil {
		t.Relay = gen.Relay
	}
	return t, nil
}

// ForMeet resolves the tables of a meet without memoization.
func ForMeet(meet model.Meet) (Table, error) {
	var m *Memo
	return m.ForMeet(meet)
}
