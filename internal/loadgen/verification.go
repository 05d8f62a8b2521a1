package loadgen

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
)

// Verify checks a served result against itself: every team total equals
// the points of its rows, ranks follow totals, and places never decrease
// within an event.
func Verify(res ranking.Result) error {
	rows := lo.FlatMap(res.Events, func(ev ranking.EventResult, _ int) []ranking.Row { return ev.Rows })
	byTeam := lo.GroupBy(rows, func(r ranking.Row) string { return r.TeamID })

	for _, st := range res.Standings {
		sum := lo.SumBy(byTeam[st.TeamID], func(r ranking.Row) int { return r.Points })
		if sum != st.Points {
			return fmt.Errorf("meet %s %s: team %s total %d, rows sum to %d: %w",
				res.MeetID, res.Mode, st.TeamID, st.Points, sum, ErrVerification)
		}
		if st.IndividualPoints+st.DivingPoints+st.RelayPoints != st.Points {
			return fmt.Errorf("meet %s %s: team %s category totals do not add up: %w",
				res.MeetID, res.Mode, st.TeamID, ErrVerification)
		}
	}

	for i := 1; i < len(res.Standings); i++ {
		prev, cur := res.Standings[i-1], res.Standings[i]
		if cur.Points > prev.Points || (cur.Points == prev.Points && cur.Rank != prev.Rank) {
			return fmt.Errorf("meet %s %s: standings out of order at %d: %w", res.MeetID, res.Mode, i, ErrVerification)
		}
	}

	for _, ev := range res.Events {
		last := 0
		for _, r := range ev.Rows {
			if !r.Scored {
				continue
			}
			if r.Place < last {
				return fmt.Errorf("meet %s %s: event %s places out of order: %w",
					res.MeetID, res.Mode, ev.Event.ID, ErrVerification)
			}
			last = r.Place
		}
	}
	return nil
}
