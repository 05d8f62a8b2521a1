package view

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ordering"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/relay"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/swimtime"
)

type lineupCandidate struct {
	Lineup
	override float64
}

type relayCandidate struct {
	Relay
	override float64
}

// prepared is the mode independent part of a composition.
type prepared struct {
	meet     model.Meet
	events   []model.Event
	eventPos map[string]int
	teams    []Team
	lineups  []lineupCandidate
	relays   []relayCandidate
	variants map[string]*sensitivity
	warnings []Warning
	hasReal  bool
	hasSim   bool
}

func (p *prepared) warn(w Warning) { p.warnings = append(p.warnings, w) }

// Compose builds the candidate set of a meet for mode. realResultsEventIDs
// limits which events may use override times; nil falls back to the meet's
// stored list, and when that is empty too every event is eligible.
//
// Malformed serialized configuration aborts with
// model.ErrMalformedConfiguration. Problems with single records are
// reported as warnings.
func Compose(snap model.Snapshot, mode model.ViewMode, realResultsEventIDs model.IDSet) (View, error) {
	switch mode {
	case model.ViewSimulated, model.ViewReal, model.ViewHybrid:
	default:
		return View{}, fmt.Errorf("compose: %q: %w", mode, model.ErrUnknownViewMode)
	}
	p, err := prepare(snap, realResultsEventIDs)
	if err != nil {
		return View{}, fmt.Errorf("compose: %w", err)
	}
	return p.selectMode(mode), nil
}

// HasRealResults reports whether at least one eligible lineup or relay in
// the real-results events carries an override time.
func HasRealResults(snap model.Snapshot, realResultsEventIDs model.IDSet) (bool, error) {
	p, err := prepare(snap, realResultsEventIDs)
	if err != nil {
		return false, err
	}
	return p.hasReal, nil
}

// HasSimulatedData reports whether at least one eligible lineup or relay has
// a usable seed time.
func HasSimulatedData(snap model.Snapshot) (bool, error) {
	p, err := prepare(snap, nil)
	if err != nil {
		return false, err
	}
	return p.hasSim, nil
}

func prepare(snap model.Snapshot, realIDs model.IDSet) (*prepared, error) {
	meet := snap.Meet.WithDefaults()
	p := &prepared{meet: meet, variants: make(map[string]*sensitivity)}

	selected, err := model.ParseIDSet(meet.SelectedEvents)
	if err != nil {
		return nil, fmt.Errorf("selected events: %w", err)
	}
	order, err := ordering.ParseEventOrder(meet.EventOrder)
	if err != nil {
		return nil, fmt.Errorf("event order: %w", err)
	}
	if realIDs == nil {
		if realIDs, err = model.ParseIDSet(meet.RealResultsEventIDs); err != nil {
			return nil, fmt.Errorf("real results events: %w", err)
		}
	}
	realEvent := func(id string) bool { return realIDs == nil || realIDs.Has(id) }

	p.resolveEvents(snap.Events, selected, order)

	eligible, err := p.resolveRosters(snap)
	if err != nil {
		return nil, err
	}

	seeds := buildSeedIndex(snap.Teams, eligible, snap.EventByID(), p.warn)
	p.composeLineups(snap, eligible, seeds, realEvent)
	if err := p.composeRelays(snap, eligible, seeds, realEvent); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *prepared) resolveEvents(all []model.Event, selected model.IDSet, order ordering.EventOrder) {
	events := make([]model.Event, 0, len(all))
	for _, e := range all {
		if selected != nil && !selected.Has(e.ID) {
			continue
		}
		cat, err := e.ResolveCategory()
		if err != nil {
			p.warn(Warning{Kind: WarnUnknownCategory, EventID: e.ID, Message: err.Error()})
		}
		e.Category = cat
		events = append(events, e)
	}
	p.events = ordering.Sort(events, order, p.meet.MeetType)
	p.eventPos = make(map[string]int, len(p.events))
	for i, e := range p.events {
		p.eventPos[e.ID] = i
	}
}

// resolveRosters returns athlete id -> team id for every athlete that is
// selected, enabled and on the team that selected them.
func (p *prepared) resolveRosters(snap model.Snapshot) (map[string]string, error) {
	athletes := snap.AthleteByID()
	names := snap.TeamNames()
	eligible := make(map[string]string)

	for _, mt := range snap.MeetTeams {
		ids, err := model.ParseIDList(mt.SelectedAthletes)
		if err != nil {
			return nil, fmt.Errorf("team %s selected athletes: %w", mt.TeamID, err)
		}
		variant, verr := parseSensitivity(mt)
		if verr != nil {
			p.warn(Warning{Kind: WarnInvalidSensitivity, RecordID: mt.TeamID, Message: verr.Error()})
		}

		t := Team{MeetTeam: mt, Name: names[mt.TeamID], Roster: []string{}}
		for _, id := range ids {
			a, ok := athletes[id]
			if !ok || !a.IsEnabled || a.TeamID != mt.TeamID {
				continue
			}
			if _, dup := eligible[id]; dup {
				continue
			}
			if variant != nil && variant.kind == variantRemove && variant.athleteID == id {
				continue
			}
			eligible[id] = mt.TeamID
			t.Roster = append(t.Roster, id)
			if a.IsDiver {
				t.Divers++
			} else {
				t.Swimmers++
			}
		}

		if variant != nil && variant.kind != variantRemove && eligible[variant.athleteID] == mt.TeamID {
			p.variants[variant.athleteID] = variant
		}

		if p.meet.MaxAthletes > 0 {
			load := float64(t.Swimmers) + float64(t.Divers)*p.meet.DiverRatio
			if load > float64(p.meet.MaxAthletes) {
				p.warn(Warning{
					Kind:     WarnRosterLimit,
					RecordID: mt.TeamID,
					Message: fmt.Sprintf("team %s roster counts %.2f athletes, cap is %d",
						mt.TeamID, load, p.meet.MaxAthletes),
				})
			}
		}
		p.teams = append(p.teams, t)
	}
	return eligible, nil
}

func (p *prepared) byEventOrder(eventA, eventB string) int {
	return cmp.Compare(p.eventPos[eventA], p.eventPos[eventB])
}

func (p *prepared) composeLineups(snap model.Snapshot, eligible map[string]string, seeds seedIndex, realEvent func(string) bool) {
	athletes := snap.AthleteByID()

	lineups := make([]model.MeetLineup, 0, len(snap.Lineups))
	for _, l := range snap.Lineups {
		pos, ok := p.eventPos[l.EventID]
		if !ok || p.events[pos].Category == model.CategoryRelay {
			continue
		}
		if _, ok := eligible[l.AthleteID]; !ok {
			continue
		}
		lineups = append(lineups, l)
	}
	slices.SortStableFunc(lineups, func(a, b model.MeetLineup) int { return p.byEventOrder(a.EventID, b.EventID) })

	type capKey struct {
		athleteID string
		category  model.EventCategory
	}
	counts := make(map[capKey]int)
	seen := make(map[seedKey]bool)

	for _, l := range lineups {
		ev := p.events[p.eventPos[l.EventID]]
		k := seedKey{athleteID: l.AthleteID, eventID: l.EventID}
		if seen[k] {
			continue
		}
		seen[k] = true

		limit := p.meet.MaxIndivEvents
		if ev.Category == model.CategoryDiving {
			limit = p.meet.MaxDivingEvents
		}
		ck := capKey{athleteID: l.AthleteID, category: ev.Category}
		counts[ck]++
		if limit > 0 && counts[ck] > limit {
			p.warn(Warning{
				Kind:     WarnEventLimit,
				RecordID: l.ID,
				EventID:  l.EventID,
				Message: fmt.Sprintf("athlete %s exceeds %d %s events; entry dropped",
					l.AthleteID, limit, ev.Category),
			})
			continue
		}

		override, err := resolveSeconds(l.OverrideSeconds, l.OverrideTime)
		if err != nil {
			p.warn(Warning{Kind: WarnInvalidTime, RecordID: l.ID, EventID: l.EventID, Message: err.Error()})
			override = 0
		}
		if !realEvent(l.EventID) {
			override = 0
		}
		seed := seeds.seed(l.AthleteID, l.EventID)

		p.hasReal = p.hasReal || swimtime.Present(override)
		p.hasSim = p.hasSim || swimtime.Present(seed)

		p.lineups = append(p.lineups, lineupCandidate{
			Lineup: Lineup{
				MeetLineup:  l,
				TeamID:      eligible[l.AthleteID],
				AthleteName: athletes[l.AthleteID].Name,
				Category:    ev.Category,
				SeedSeconds: seed,
			},
			override: override,
		})
	}
}

func (p *prepared) composeRelays(snap model.Snapshot, eligible map[string]string, seeds seedIndex, realEvent func(string) bool) error {
	athletes := snap.AthleteByID()
	teams := make(map[string]bool, len(p.teams))
	for _, t := range p.teams {
		teams[t.TeamID] = true
	}

	entries := make([]model.RelayEntry, 0, len(snap.RelayEntries))
	for _, r := range snap.RelayEntries {
		pos, ok := p.eventPos[r.EventID]
		if !ok || p.events[pos].Category != model.CategoryRelay || !teams[r.TeamID] {
			continue
		}
		entries = append(entries, r)
	}
	slices.SortStableFunc(entries, func(a, b model.RelayEntry) int { return p.byEventOrder(a.EventID, b.EventID) })

	legCounts := make(map[string]int)
	for _, r := range entries {
		ev := p.events[p.eventPos[r.EventID]]
		members, err := relay.ParseMembers(r.Members)
		if err != nil {
			return fmt.Errorf("relay entry %s: %w", r.ID, err)
		}
		cfg := relay.ConfigFor(ev.Name)
		if len(members) > cfg.NumLegs {
			p.warn(Warning{
				Kind:     WarnRelayComposition,
				RecordID: r.ID,
				EventID:  r.EventID,
				Message:  fmt.Sprintf("%d members for %d legs: %v", len(members), cfg.NumLegs, model.ErrInconsistentRelayComposition),
			})
			continue
		}

		slots := make([]string, cfg.NumLegs)
		copy(slots, members)
		if msg := p.checkMembers(slots, r.TeamID, athletes, eligible); msg != "" {
			p.warn(Warning{
				Kind:     WarnRelayComposition,
				RecordID: r.ID,
				EventID:  r.EventID,
				Message:  fmt.Sprintf("%s: %v", msg, model.ErrInconsistentRelayComposition),
			})
			continue
		}

		for _, id := range slots {
			if id == "" {
				continue
			}
			legCounts[id]++
			if p.meet.MaxRelays > 0 && legCounts[id] > p.meet.MaxRelays {
				p.warn(Warning{
					Kind:     WarnRelayLimit,
					RecordID: r.ID,
					EventID:  r.EventID,
					Message:  fmt.Sprintf("athlete %s swims more than %d relays", id, p.meet.MaxRelays),
				})
			}
		}

		legs := make([]float64, cfg.NumLegs)
		for i, id := range slots {
			if id != "" {
				legs[i] = seeds.split(id, cfg.DistancePerLeg, cfg.LegStroke(i))
			}
		}
		seed := swimtime.Sum(legs...)

		override, err := resolveSeconds(r.OverrideSeconds, r.OverrideTime)
		if err != nil {
			p.warn(Warning{Kind: WarnInvalidTime, RecordID: r.ID, EventID: r.EventID, Message: err.Error()})
			override = 0
		}
		if !realEvent(r.EventID) {
			override = 0
		}

		p.hasReal = p.hasReal || swimtime.Present(override)
		p.hasSim = p.hasSim || swimtime.Present(seed)

		p.relays = append(p.relays, relayCandidate{
			Relay: Relay{
				RelayEntry:  r,
				Config:      cfg,
				MemberIDs:   slots,
				LegSeconds:  legs,
				SeedSeconds: seed,
			},
			override: override,
		})
	}
	return nil
}

// checkMembers blanks slots of excluded athletes and returns a message when
// a member is unknown, on another team, or listed twice.
func (p *prepared) checkMembers(slots []string, teamID string, athletes map[string]model.Athlete, eligible map[string]string) string {
	seen := make(map[string]bool, len(slots))
	for i, id := range slots {
		if id == "" {
			continue
		}
		a, ok := athletes[id]
		if !ok || a.TeamID != teamID {
			return fmt.Sprintf("member %s is not on the roster of team %s", id, teamID)
		}
		if seen[id] {
			return fmt.Sprintf("member %s swims more than one leg", id)
		}
		seen[id] = true
		if eligible[id] != teamID {
			slots[i] = ""
		}
	}
	return ""
}

// selectMode picks effective times for mode. It only reads p.
func (p *prepared) selectMode(mode model.ViewMode) View {
	v := View{
		Mode:             mode,
		Meet:             p.meet,
		Events:           slices.Clone(p.events),
		Lineups:          make([]Lineup, 0, len(p.lineups)),
		Relays:           make([]Relay, 0, len(p.relays)),
		Teams:            make([]Team, 0, len(p.teams)),
		Warnings:         slices.Clone(p.warnings),
		HasRealResults:   p.hasReal,
		HasSimulatedData: p.hasSim,
		eventsWithData:   model.NewIDSet(),
	}
	for _, t := range p.teams {
		t.Roster = slices.Clone(t.Roster)
		v.Teams = append(v.Teams, t)
	}

	for _, c := range p.lineups {
		l := c.Lineup
		eff, src, ok := pick(mode, l.SeedSeconds, c.override)
		if !ok {
			continue
		}
		if s := p.variants[l.AthleteID]; s != nil && swimtime.Present(eff) {
			eff = swimtime.Scale(eff, s.factor(l.Category))
			l.Adjusted = true
		}
		l.EffectiveSeconds, l.Source, l.FinalTimeSeconds = eff, src, eff
		if swimtime.Present(eff) {
			v.eventsWithData[l.EventID] = struct{}{}
		}
		v.Lineups = append(v.Lineups, l)
	}

	for _, c := range p.relays {
		r := c.Relay
		r.MemberIDs = slices.Clone(r.MemberIDs)
		r.LegSeconds = slices.Clone(r.LegSeconds)
		eff, src, ok := pick(mode, r.SeedSeconds, c.override)
		if !ok {
			continue
		}
		switch src {
		case SourceSeed:
			for i, id := range r.MemberIDs {
				if s := p.variants[id]; s != nil {
					r.LegSeconds[i] = swimtime.Scale(r.LegSeconds[i], s.factor(model.CategoryRelay))
					r.Adjusted = true
				}
			}
			if r.Adjusted {
				eff = swimtime.Sum(r.LegSeconds...)
			}
		case SourceOverride:
			// An official time has no legs: each member owns an equal share.
			if f, ok := p.relayShareFactor(r.MemberIDs); ok {
				eff = swimtime.Scale(eff, f)
				r.Adjusted = true
			}
		}
		r.EffectiveSeconds, r.Source, r.FinalTimeSeconds = eff, src, eff
		if swimtime.Present(eff) {
			v.eventsWithData[r.EventID] = struct{}{}
		}
		v.Relays = append(v.Relays, r)
	}
	return v
}

// pick selects the effective time for a mode. ok is false when the
// candidate must be left out of the view entirely.
func pick(mode model.ViewMode, seed, override float64) (float64, Source, bool) {
	switch mode {
	case model.ViewReal:
		if !swimtime.Present(override) {
			return 0, SourceNone, false
		}
		return override, SourceOverride, true
	case model.ViewHybrid:
		if swimtime.Present(override) {
			return override, SourceOverride, true
		}
		if swimtime.Present(seed) {
			return seed, SourceSeed, true
		}
		return 0, SourceNone, true
	default:
		if swimtime.Present(seed) {
			return seed, SourceSeed, true
		}
		return 0, SourceNone, true
	}
}

// relayShareFactor is the multiplier for an official relay time when a
// variant athlete swims one of its legs.
func (p *prepared) relayShareFactor(members []string) (float64, bool) {
	legs := max(len(members), relay.NumLegs)
	total, adjusted := 0.0, false
	for i := range legs {
		f := 1.0
		if i < len(members) {
			if s := p.variants[members[i]]; s != nil {
				f = s.factor(model.CategoryRelay)
				adjusted = true
			}
		}
		total += f
	}
	return total / float64(legs), adjusted
}
