package view

import (
	"fmt"
	"strings"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

type variantKind int

const (
	variantBetter variantKind = iota + 1
	variantWorse
	variantRemove
)

// sensitivity is a what-if adjustment of one athlete, applied only to the
// composed copy.
type sensitivity struct {
	athleteID string
	kind      variantKind
	percent   float64
}

// parseSensitivity reads the variant of a meet team. It returns nil when the
// team has none configured.
func parseSensitivity(mt model.MeetTeam) (*sensitivity, error) {
	if strings.TrimSpace(mt.SensitivityAthleteID) == "" {
		return nil, nil
	}
	s := &sensitivity{athleteID: strings.TrimSpace(mt.SensitivityAthleteID), percent: mt.SensitivityPercent}
	switch strings.ToLower(strings.TrimSpace(mt.SensitivityVariant)) {
	case "better", "faster", "improve":
		s.kind = variantBetter
	case "worse", "slower":
		s.kind = variantWorse
	case "remove", "scratch":
		s.kind = variantRemove
		return s, nil
	default:
		return nil, fmt.Errorf("team %s: unknown sensitivity variant %q", mt.TeamID, mt.SensitivityVariant)
	}
	if s.percent <= 0 || s.percent >= 100 {
		return nil, fmt.Errorf("team %s: sensitivity percent %v out of range (0, 100)", mt.TeamID, mt.SensitivityPercent)
	}
	return s, nil
}

// factor is the multiplier applied to an effective time. Diving scores
// improve upward, race times downward.
func (s *sensitivity) factor(cat model.EventCategory) float64 {
	p := s.percent / 100
	better := s.kind == variantBetter
	if cat == model.CategoryDiving {
		better = !better
	}
	if better {
		return 1 - p
	}
	return 1 + p
}
