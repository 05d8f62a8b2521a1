package service

import (
	"fmt"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/scoring"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/view"
)

// Evaluate composes and ranks one view of a snapshot. tables may be nil.
func Evaluate(snap model.Snapshot, mode model.ViewMode, tables *scoring.Memo) (ranking.Result, error) {
	v, err := view.Compose(snap, mode, nil)
	if err != nil {
		return ranking.Result{}, fmt.Errorf("compose %s view: %w", mode, err)
	}
	table, err := tables.ForMeet(v.Meet)
	if err != nil {
		return ranking.Result{}, fmt.Errorf("scoring tables: %w", err)
	}
	return ranking.Score(v, table), nil
}

// Validate checks the serialized configuration of a snapshot before it is
// stored, so malformed meets are refused at the boundary.
func Validate(snap model.Snapshot) error {
	if snap.Meet.ID == "" {
		return fmt.Errorf("meet id is empty: %w", ErrInvalidSnapshot)
	}
	if snap.Meet.ViewMode != "" {
		if _, err := model.ParseViewMode(string(snap.Meet.ViewMode)); err != nil {
			return fmt.Errorf("%w: meet view mode: %w", ErrInvalidSnapshot, err)
		}
	}
	if _, err := view.Compose(snap, model.ViewHybrid, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if _, err := scoring.ForMeet(snap.Meet); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return nil
}
