package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// ErrUnknownSquad is returned by squad commands addressed to a squad id the
// registry does not hold.
var ErrUnknownSquad = errors.New("unknown squad")

// SquadID identifies a squad within a World.
type SquadID int

// CombatStance is a squad's rules of engagement.
type CombatStance int

const (
	StanceAggressive  CombatStance = iota // attack everything
	StanceDefensive                       // fight back when attacked
	StanceStandGround                     // hold position, fight nearby
	StanceNoAttack                        // never attack
	StancePatrol                          // move between points
	StanceGuard                           // protect a unit or building
)

func (cs CombatStance) String() string {
	switch cs {
	case StanceAggressive:
		return "aggressive"
	case StanceDefensive:
		return "defensive"
	case StanceStandGround:
		return "stand_ground"
	case StanceNoAttack:
		return "no_attack"
	case StancePatrol:
		return "patrol"
	case StanceGuard:
		return "guard"
	default:
		return "unknown"
	}
}

// Squad groups combatants under a shared formation and stance.
type Squad struct {
	ID        SquadID
	Members   []EntityID // rank order
	Formation FormationType
	Stance    CombatStance
	Leader    EntityID

	rallyPoint    Position
	hasRallyPoint bool

	// anchor overrides the first-member centre after a MoveTo order.
	anchor    Position
	hasAnchor bool

	// dirty marks a pending position assignment.
	dirty bool
	// holding suppresses re-layout by UpdateSquads until the next
	// movement order.
	holding bool

	// NeedsRegroup is set by the cohesion sweep when the squad is spread
	// wider than the regroup distance. The driver decides how to react.
	NeedsRegroup bool
	// Spread is the max member distance from the centre at the last sweep.
	Spread float64
	// Center is the mean member position at the last sweep.
	Center Position
}

// RallyPoint returns the squad's rally point, if one was set.
func (sq *Squad) RallyPoint() (Position, bool) {
	return sq.rallyPoint, sq.hasRallyPoint
}

// Size returns the number of members currently on the roster.
func (sq *Squad) Size() int {
	return len(sq.Members)
}

func (sq *Squad) String() string {
	return fmt.Sprintf("squad#%d[%s/%s n=%d]", sq.ID, sq.Formation, sq.Stance, len(sq.Members))
}

// --- Registry ---

// CreateSquad forms a squad from members in the given order. Each member
// gets a formation slot with rank = index / RankWidth. The squad starts
// Aggressive with the first member as leader and a pending position
// assignment. Handles that do not resolve are dropped from the roster.
func (w *World) CreateSquad(members []EntityID, formation FormationType) SquadID {
	id := w.nextSquad
	w.nextSquad++

	sq := &Squad{
		ID:        id,
		Formation: formation,
		Stance:    StanceAggressive,
		dirty:     true,
	}
	for _, m := range members {
		c, ok := w.Get(m)
		if !ok {
			continue
		}
		if c.slot != nil {
			w.removeFromSquad(c.slot.Squad, m)
		}
		sq.Members = append(sq.Members, m)
	}
	if len(sq.Members) > 0 {
		sq.Leader = sq.Members[0]
	}
	w.squads[id] = sq
	w.squadOrder = append(w.squadOrder, id)
	w.reslot(sq)

	w.event("--", "--", "squad", "created", sq.String(), float64(len(sq.Members)))
	w.log.Info().Int("squad", int(id)).Str("formation", formation.String()).
		Int("members", len(sq.Members)).Msg("squad created")
	return id
}

// Squad looks up a squad by id.
func (w *World) Squad(id SquadID) (*Squad, bool) {
	sq, ok := w.squads[id]
	return sq, ok
}

// Squads returns every squad in creation order.
func (w *World) Squads() []*Squad {
	out := make([]*Squad, 0, len(w.squadOrder))
	for _, id := range w.squadOrder {
		if sq, ok := w.squads[id]; ok {
			out = append(out, sq)
		}
	}
	return out
}

// reslot rewrites every member's formation slot to match roster order.
func (w *World) reslot(sq *Squad) {
	width := w.tuning.RankWidth
	for i, m := range sq.Members {
		c, ok := w.Get(m)
		if !ok {
			continue
		}
		offset := Position{}
		if c.slot != nil && c.slot.Squad == sq.ID {
			offset = c.slot.Offset
		}
		c.slot = &FormationPosition{Squad: sq.ID, Rank: i / width, Offset: offset}
	}
}

func (w *World) removeFromSquad(id SquadID, member EntityID) {
	sq, ok := w.squads[id]
	if !ok {
		return
	}
	kept := sq.Members[:0]
	for _, m := range sq.Members {
		if m != member {
			kept = append(kept, m)
		}
	}
	sq.Members = kept
	if sq.Leader == member {
		sq.Leader = EntityID{}
		if len(sq.Members) > 0 {
			sq.Leader = sq.Members[0]
		}
	}
	sq.dirty = true
	w.reslot(sq)
}

// --- Cohesion ---

// CohesionReport is the outcome of one cohesion sweep.
type CohesionReport struct {
	Pruned       int
	Alive        int
	Center       Position
	Spread       float64
	NeedsRegroup bool
	Empty        bool
}

// SweepCohesion removes members that no longer resolve, then measures the
// spread of the survivors around their truncated mean centre. A spread
// strictly greater than the regroup distance flags the squad. Running it
// twice without entity changes yields the same roster.
func (w *World) SweepCohesion(id SquadID) (CohesionReport, error) {
	sq, ok := w.squads[id]
	if !ok {
		return CohesionReport{}, ErrUnknownSquad
	}

	var rep CohesionReport
	kept := sq.Members[:0]
	for _, m := range sq.Members {
		if w.Alive(m) {
			kept = append(kept, m)
		} else {
			rep.Pruned++
		}
	}
	sq.Members = kept
	rep.Alive = len(sq.Members)

	if rep.Pruned > 0 {
		sq.dirty = true
		if !w.Alive(sq.Leader) {
			prev := sq.Leader
			sq.Leader = EntityID{}
			if len(sq.Members) > 0 {
				sq.Leader = sq.Members[0]
				w.event("--", "--", "squad", "leader_succession",
					fmt.Sprintf("squad#%d %s -> %s", sq.ID, prev, sq.Leader), 0)
			}
		}
		w.reslot(sq)
		w.metrics.add(w.metrics.pruned, int64(rep.Pruned))
		w.event("--", "--", "cohesion", "pruned", fmt.Sprintf("squad#%d removed %d", sq.ID, rep.Pruned), float64(rep.Pruned))
	}

	if rep.Alive == 0 {
		rep.Empty = true
		sq.NeedsRegroup = false
		sq.Spread = 0
		return rep, nil
	}

	if rep.Alive >= 2 {
		positions := make([]Position, 0, rep.Alive)
		for _, m := range sq.Members {
			c, _ := w.Get(m)
			positions = append(positions, c.Pos)
		}
		rep.Center, rep.Spread = spreadAround(positions)
	} else {
		c, _ := w.Get(sq.Members[0])
		rep.Center = c.Pos
	}

	rep.NeedsRegroup = rep.Spread > w.tuning.RegroupDistance
	if rep.NeedsRegroup && !sq.NeedsRegroup {
		w.metrics.add(w.metrics.regroups, 1, attribute.Int("squad", int(sq.ID)))
		w.event("--", "--", "cohesion", "regroup", fmt.Sprintf("squad#%d spread %.1f", sq.ID, rep.Spread), rep.Spread)
		w.log.Info().Int("squad", int(sq.ID)).Float64("spread", rep.Spread).Msg("squad flagged for regroup")
	}
	sq.NeedsRegroup = rep.NeedsRegroup
	sq.Spread = rep.Spread
	sq.Center = rep.Center
	return rep, nil
}

// spreadAround returns the integer-truncated mean of positions and the max
// planar distance of any position from it.
func spreadAround(positions []Position) (Position, float64) {
	sumX, sumY := 0, 0
	for _, p := range positions {
		sumX += p.X
		sumY += p.Y
	}
	n := len(positions)
	center := Position{X: sumX / n, Y: sumY / n, Z: positions[0].Z}
	maxSq := 0
	for _, p := range positions {
		dx := p.X - center.X
		dy := p.Y - center.Y
		if d := dx*dx + dy*dy; d > maxSq {
			maxSq = d
		}
	}
	return center, math.Sqrt(float64(maxSq))
}

// --- Position assignment ---

// AssignResult describes one formation position assignment.
type AssignResult struct {
	Center   Position
	Assigned int
	Empty    bool
}

// AssignPositions lays the squad's formation out around its anchor (the
// first live member, or the MoveTo point) and gives every member its slot
// as a movement destination. Extra positions or members are ignored.
func (w *World) AssignPositions(id SquadID) (AssignResult, error) {
	sq, ok := w.squads[id]
	if !ok {
		return AssignResult{}, ErrUnknownSquad
	}

	live := make([]*Combatant, 0, len(sq.Members))
	for _, m := range sq.Members {
		if c, ok := w.Get(m); ok {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return AssignResult{Empty: true}, nil
	}

	center := live[0].Pos
	if sq.hasAnchor {
		center = sq.anchor
	}
	positions := ComputePositions(sq.Formation, len(live), center, w.rng)

	res := AssignResult{Center: center}
	for i, c := range live {
		if i >= len(positions) {
			break
		}
		c.setDestination(positions[i])
		if c.slot != nil && c.slot.Squad == sq.ID {
			c.slot.Offset = Position{X: positions[i].X - center.X, Y: positions[i].Y - center.Y}
		}
		res.Assigned++
	}
	sq.dirty = false
	sq.holding = false

	w.event("--", "--", "squad", "assign", fmt.Sprintf("squad#%d %s around %s", sq.ID, sq.Formation, center), float64(res.Assigned))
	return res, nil
}

// UpdateSquads runs the per-tick squad pass: every squad is swept first and
// then, if its roster or orders changed, re-laid out. Holding squads are
// not re-laid out. Empty squads are disbanded when tuning asks for it.
func (w *World) UpdateSquads() {
	for _, id := range append([]SquadID(nil), w.squadOrder...) {
		rep, err := w.SweepCohesion(id)
		if err != nil {
			continue
		}
		if rep.Empty {
			if w.tuning.DisbandEmptySquads {
				_ = w.Disband(id)
			}
			continue
		}
		if sq := w.squads[id]; sq.dirty && !sq.holding {
			_, _ = w.AssignPositions(id)
		}
	}
}

// --- Orders ---

// SetFormation changes a squad's formation and schedules a re-layout.
func (w *World) SetFormation(id SquadID, ft FormationType) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	if sq.Formation != ft {
		w.event("--", "--", "squad", "formation", fmt.Sprintf("squad#%d %s -> %s", sq.ID, sq.Formation, ft), 0)
	}
	sq.Formation = ft
	sq.dirty = true
	sq.holding = false
	return nil
}

// SetStance changes a squad's stance and schedules a re-layout.
func (w *World) SetStance(id SquadID, st CombatStance) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	sq.Stance = st
	sq.dirty = true
	if st == StanceNoAttack {
		for _, m := range sq.Members {
			if c, ok := w.Get(m); ok {
				c.hasTarget = false
				if c.Task == TaskFight {
					c.Task = TaskIdle
				}
			}
		}
	}
	return nil
}

// SetRallyPoint records where the squad falls back to.
func (w *World) SetRallyPoint(id SquadID, p Position) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	sq.rallyPoint = p
	sq.hasRallyPoint = true
	return nil
}

// MoveSquad anchors the formation on p instead of the first member.
func (w *World) MoveSquad(id SquadID, p Position) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	sq.anchor = p
	sq.hasAnchor = true
	sq.dirty = true
	sq.holding = false
	return nil
}

// Hold clears the squad's anchor and every member's destination. The squad
// stays put through later prunes and roster changes until SetFormation,
// MoveSquad, Regroup or AssignPositions gives it a new layout.
func (w *World) Hold(id SquadID) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	sq.hasAnchor = false
	sq.dirty = false
	sq.holding = true
	for _, m := range sq.Members {
		if c, ok := w.Get(m); ok {
			c.clearDestination()
		}
	}
	return nil
}

// Regroup reforms a spread squad in Line on the live members' current
// mean centre.
func (w *World) Regroup(id SquadID) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	if err := w.SetFormation(id, FormationLine); err != nil {
		return err
	}
	positions := make([]Position, 0, len(sq.Members))
	for _, m := range sq.Members {
		if c, ok := w.Get(m); ok {
			positions = append(positions, c.Pos)
		}
	}
	if len(positions) > 0 {
		sq.anchor, _ = spreadAround(positions)
		sq.hasAnchor = true
	}
	_, err := w.AssignPositions(id)
	return err
}

// Merge moves every member of src to the back of dst and disbands src.
func (w *World) Merge(dst, src SquadID) error {
	if dst == src {
		return nil
	}
	d, ok := w.squads[dst]
	if !ok {
		return ErrUnknownSquad
	}
	s, ok := w.squads[src]
	if !ok {
		return ErrUnknownSquad
	}
	d.Members = append(d.Members, s.Members...)
	s.Members = nil
	if !w.Alive(d.Leader) && len(d.Members) > 0 {
		d.Leader = d.Members[0]
	}
	d.dirty = true
	w.reslot(d)
	w.deleteSquad(src)
	w.event("--", "--", "squad", "merge", fmt.Sprintf("squad#%d <- squad#%d", dst, src), float64(len(d.Members)))
	return nil
}

// Split moves the rear half of a squad into a new squad with the same
// formation and stance. A squad of fewer than two members cannot split.
func (w *World) Split(id SquadID) (SquadID, error) {
	sq, ok := w.squads[id]
	if !ok {
		return 0, ErrUnknownSquad
	}
	if len(sq.Members) < 2 {
		return 0, nil
	}
	half := len(sq.Members) / 2
	rear := append([]EntityID(nil), sq.Members[len(sq.Members)-half:]...)
	sq.Members = sq.Members[:len(sq.Members)-half]
	sq.dirty = true
	w.reslot(sq)

	newID := w.CreateSquad(rear, sq.Formation)
	w.squads[newID].Stance = sq.Stance
	return newID, nil
}

// Disband dissolves a squad and clears its members' formation slots.
func (w *World) Disband(id SquadID) error {
	sq, ok := w.squads[id]
	if !ok {
		return ErrUnknownSquad
	}
	for _, m := range sq.Members {
		if c, ok := w.Get(m); ok && c.slot != nil && c.slot.Squad == id {
			c.slot = nil
		}
	}
	w.deleteSquad(id)
	w.event("--", "--", "squad", "disbanded", fmt.Sprintf("squad#%d", id), 0)
	w.log.Info().Int("squad", int(id)).Msg("squad disbanded")
	return nil
}

func (w *World) deleteSquad(id SquadID) {
	delete(w.squads, id)
	for i, s := range w.squadOrder {
		if s == id {
			w.squadOrder = append(w.squadOrder[:i], w.squadOrder[i+1:]...)
			break
		}
	}
}

// SquadRoster formats a squad's live members for logs and reports.
func (w *World) SquadRoster(id SquadID) string {
	sq, ok := w.squads[id]
	if !ok {
		return ""
	}
	labels := make([]string, 0, len(sq.Members))
	for _, m := range sq.Members {
		if c, ok := w.Get(m); ok {
			labels = append(labels, c.Label)
		}
	}
	return strings.Join(labels, ",")
}
