package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// EventCategory classifies an event for ranking and scoring.
type EventCategory string

// Known event categories.
const (
	CategoryIndividual EventCategory = "individual"
	CategoryDiving     EventCategory = "diving"
	CategoryRelay      EventCategory = "relay"
)

// Stroke names a swimming stroke.
type Stroke string

// Strokes, as used in event names and relay legs.
const (
	StrokeFree   Stroke = "Free"
	StrokeBack   Stroke = "Back"
	StrokeBreast Stroke = "Breast"
	StrokeFly    Stroke = "Fly"
	StrokeIM     Stroke = "IM"
)

// Event is shared across meets and immutable once created.
type Event struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category EventCategory `json:"category"`
	SortKey  int           `json:"sort_key"`
}

// IsRelay reports whether the event resolves to the relay category.
func (e Event) IsRelay() bool {
	c, _ := e.ResolveCategory()
	return c == CategoryRelay
}

// IsDiving reports whether the event resolves to the diving category.
func (e Event) IsDiving() bool {
	c, _ := e.ResolveCategory()
	return c == CategoryDiving
}

// ResolveCategory returns the declared category, or infers one from the
// name. An event that matches no heuristic is treated as individual and
// reported with ErrUnknownEventCategory.
func (e Event) ResolveCategory() (EventCategory, error) {
	switch e.Category {
	case CategoryIndividual, CategoryDiving, CategoryRelay:
		return e.Category, nil
	}
	name := strings.ToLower(e.Name)
	_, isSwim := strokeFromName(name)
	switch {
	case strings.Contains(name, "relay"):
		return CategoryRelay, nil
	case strings.Contains(name, "diving"), strings.Contains(name, "dive"),
		strings.Contains(name, "platform"):
		return CategoryDiving, nil
	case isSwim:
		return CategoryIndividual, nil
	case strings.Contains(name, "meter"), strings.Contains(name, "board"):
		return CategoryDiving, nil
	}
	return CategoryIndividual, fmt.Errorf("event %q (%s): %w", e.Name, e.ID, ErrUnknownEventCategory)
}

// ParseEventName extracts the distance and stroke of a swimming event name
// such as "100 Breast" or "200 Individual Medley".
func ParseEventName(name string) (distance int, stroke Stroke, ok bool) {
	lower := strings.ToLower(name)
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsDigit(r) }) {
		if d, err := strconv.Atoi(tok); err == nil && d > 0 {
			distance = d
			break
		}
	}
	stroke, ok = strokeFromName(lower)
	return distance, stroke, ok && distance > 0
}

func strokeFromName(lower string) (Stroke, bool) {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	has := func(ws ...string) bool {
		for _, w := range words {
			for _, c := range ws {
				if w == c {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("im") || strings.Contains(lower, "individual medley"):
		return StrokeIM, true
	case has("free", "freestyle"):
		return StrokeFree, true
	case has("back", "backstroke"):
		return StrokeBack, true
	case has("breast", "breaststroke"):
		return StrokeBreast, true
	case has("fly", "butterfly"):
		return StrokeFly, true
	}
	return "", false
}
