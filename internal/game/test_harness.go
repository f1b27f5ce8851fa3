package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TestSim is a headless skirmish harness used by tests and the report
// command. It owns a World and plays the collaborators the combat core
// leaves outside: it walks units toward their assigned destinations and
// answers regroup flags by reforming the squad.
type TestSim struct {
	World   *World
	TileMap *TileMap
	SimLog  *SimLog

	// Units maps harness ids to world handles.
	Units map[int]EntityID
	// SquadTeam records which side each squad fights for.
	SquadTeam map[SquadID]Team

	seed        int64
	tuning      Tuning
	logger      zerolog.Logger
	moveEvery   int
	autoRegroup bool

	teamTotals map[Team]int
	unitTeam   map[int]Team
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map, seed, tuning, verbose; applied first
	simOptUnit                       // add units; applied after the world exists
	simOptSquad                      // form squads; applied after units exist
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the tile map dimensions.
func WithMapSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.TileMap = NewTileMap(cols, rows)
	}}
}

// WithWall adds a solid block of wall tiles.
func WithWall(col, row, w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		if ts.TileMap == nil {
			ts.TileMap = NewTileMap(64, 64)
		}
		ts.TileMap.FillRect(col, row, w, h, TileWall)
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithTuning replaces the default tuning.
func WithTuning(t Tuning) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tuning = t
	}}
}

// WithLogger routes world logging to l.
func WithLogger(l zerolog.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.logger = l
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithMoveEvery sets how many ticks a unit needs to cross one cell.
// Zero disables the built-in mover.
func WithMoveEvery(ticks int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.moveEvery = ticks
	}}
}

// WithAutoRegroup makes the harness reform any squad flagged for regroup.
func WithAutoRegroup(on bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.autoRegroup = on
	}}
}

// WithRedUnit adds a red unit at (x, y) armed with kind and
// carrying ammo rounds.
func WithRedUnit(id, x, y int, kind WeaponKind, ammo int) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		ts.addUnit(id, Pos(x, y), TeamRed, kind, ammo)
	}}
}

// WithBlueUnit adds a blue unit at (x, y) armed with kind.
func WithBlueUnit(id, x, y int, kind WeaponKind, ammo int) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		ts.addUnit(id, Pos(x, y), TeamBlue, kind, ammo)
	}}
}

// WithRedSquad groups existing red units (by harness id) into a squad.
func WithRedSquad(ft FormationType, ids ...int) SimOption {
	return SimOption{simOptSquad, func(ts *TestSim) {
		ts.formSquad(TeamRed, ft, ids)
	}}
}

// WithBlueSquad groups existing blue units (by harness id) into a squad.
func WithBlueSquad(ft FormationType, ids ...int) SimOption {
	return SimOption{simOptSquad, func(ts *TestSim) {
		ts.formSquad(TeamBlue, ft, ids)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map, seed, tuning, logging)
//  2. Build the World
//  3. Units
//  4. Squads
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog:     NewSimLog(false),
		Units:      make(map[int]EntityID),
		SquadTeam:  make(map[SquadID]Team),
		seed:       1,
		tuning:     DefaultTuning(),
		logger:     zerolog.Nop(),
		moveEvery:  6,
		teamTotals: make(map[Team]int),
		unitTeam:   make(map[int]Team),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	var terrain Terrain
	if ts.TileMap != nil {
		terrain = ts.TileMap
	}
	ts.World = NewWorld(terrain, ts.tuning, ts.seed)
	ts.World.SetLogger(ts.logger)
	ts.World.SetSimLog(ts.SimLog)
	for _, o := range opts {
		if o.kind == simOptUnit {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptSquad {
			o.fn(ts)
		}
	}
	return ts
}

func (ts *TestSim) addUnit(id int, p Position, team Team, kind WeaponKind, ammo int) {
	weapon := ts.World.Tuning().Weapon(kind)
	label := fmt.Sprintf("%c%d", teamPrefix(team), id)
	eid := ts.World.Spawn(label, p,
		WithTeam(team),
		WithWeapon(weapon),
		WithAmmo(weapon.Ammo, ammo),
	)
	ts.Units[id] = eid
	ts.unitTeam[id] = team
	ts.teamTotals[team]++
}

func teamPrefix(t Team) byte {
	switch t {
	case TeamRed:
		return 'R'
	case TeamBlue:
		return 'B'
	default:
		return 'N'
	}
}

// formSquad groups units into a squad. ids are harness ids, not handles.
func (ts *TestSim) formSquad(team Team, ft FormationType, ids []int) {
	var members []EntityID
	for _, id := range ids {
		if eid, ok := ts.Units[id]; ok && ts.unitTeam[id] == team {
			members = append(members, eid)
		}
	}
	if len(members) == 0 {
		return
	}
	sq := ts.World.CreateSquad(members, ft)
	ts.SquadTeam[sq] = team
}

// Unit resolves a harness id to a live combatant.
func (ts *TestSim) Unit(id int) (*Combatant, bool) {
	eid, ok := ts.Units[id]
	if !ok {
		return nil, false
	}
	return ts.World.Get(eid)
}

// SquadsOf returns the ids of every squad fighting for team.
func (ts *TestSim) SquadsOf(team Team) []SquadID {
	var out []SquadID
	for _, sq := range ts.World.Squads() {
		if ts.SquadTeam[sq.ID] == team {
			out = append(out, sq.ID)
		}
	}
	return out
}

// TeamTotal is the starting headcount of a side.
func (ts *TestSim) TeamTotal(t Team) int {
	return ts.teamTotals[t]
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.World.Tick
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	rep := ts.World.Step()
	if ts.autoRegroup {
		for _, id := range rep.Regroup {
			_ = ts.World.Regroup(id)
		}
	}
	if ts.moveEvery > 0 && ts.World.Tick%ts.moveEvery == 0 {
		ts.stepMovers()
	}
}

// stepMovers walks every unit with a destination one cell toward it.
// Units that are shooting hold still.
func (ts *TestSim) stepMovers() {
	w := ts.World
	w.Each(func(c *Combatant) {
		if c.Task == TaskFight {
			return
		}
		dest, ok := w.Destination(c.id)
		if !ok {
			return
		}
		if c.Pos.SameCell(dest) {
			c.clearDestination()
			return
		}
		next := c.Pos.Offset(sign(dest.X-c.Pos.X), sign(dest.Y-c.Pos.Y))
		if w.terrain.IsWall(next) {
			return
		}
		c.Pos = next
	})
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Outcome grades the skirmish so far.
func (ts *TestSim) Outcome() BattleOutcomeReason {
	return DetermineBattleOutcome(ts.World, ts.TeamTotal(TeamRed), ts.TeamTotal(TeamBlue), ts.SquadTeam)
}
