package game

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// World is the simulation state owned by the driver: the combatant arena,
// the squad registry and the live projectile set. It is not safe for
// concurrent use; all mutation happens inside Step.
type World struct {
	slots []entitySlot
	free  []uint32

	squads     map[SquadID]*Squad
	squadOrder []SquadID
	nextSquad  SquadID

	projectiles    []*Projectile
	nextProjectile ProjectileID

	terrain Terrain
	tuning  Tuning
	rng     *rand.Rand

	log     zerolog.Logger
	simLog  *SimLog
	metrics *combatMetrics

	Tick  int
	Clock float64 // sim seconds elapsed

	ledger damageLedger
}

type entitySlot struct {
	gen uint32
	c   *Combatant
}

// NewWorld creates an empty world. terrain may be nil for open ground.
func NewWorld(terrain Terrain, tuning Tuning, seed int64) *World {
	if terrain == nil {
		terrain = openTerrain{}
	}
	w := &World{
		squads:    make(map[SquadID]*Squad),
		nextSquad: 1,
		terrain:   terrain,
		tuning:    tuning.normalized(),
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation RNG
		log:       zerolog.Nop(),
		simLog:    NewSimLog(false),
	}
	m, err := newCombatMetrics(meter())
	if err != nil {
		w.log.Warn().Err(err).Msg("combat metrics unavailable, using no-op instruments")
		m = noopCombatMetrics()
	}
	w.metrics = m
	w.ledger.reset()
	return w
}

// SetLogger replaces the world's logger.
func (w *World) SetLogger(l zerolog.Logger) {
	w.log = l.With().Str("component", "combat").Logger()
}

// SetSimLog replaces the structured event log.
func (w *World) SetSimLog(sl *SimLog) {
	if sl == nil {
		sl = NewSimLog(false)
	}
	w.simLog = sl
}

// SimLog returns the structured event log.
func (w *World) SimLog() *SimLog {
	return w.simLog
}

// Tuning returns the active tuning.
func (w *World) Tuning() Tuning {
	return w.tuning
}

// Terrain returns the terrain collaborator.
func (w *World) Terrain() Terrain {
	return w.terrain
}

// Rand exposes the world RNG for callers that need reproducible draws.
func (w *World) Rand() *rand.Rand {
	return w.rng
}

// event records a structured event against an entity label.
func (w *World) event(label, team, category, key, value string, num float64) {
	w.simLog.Add(w.Tick, label, team, category, key, value, num)
}

// --- Arena ---

// Spawn adds a combatant at pos and returns its handle. Combatants are
// attackable with full default health unless options say otherwise.
func (w *World) Spawn(label string, pos Position, opts ...CombatantOption) EntityID {
	c := &Combatant{
		Label:      label,
		Pos:        pos,
		Health:     defaultHealth,
		MaxHealth:  defaultHealth,
		Attackable: true,
		ammo:       make(map[AmmoType]int),
	}
	for _, o := range opts {
		o(c)
	}

	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, entitySlot{})
	}
	slot := &w.slots[idx]
	slot.gen++
	slot.c = c
	c.id = EntityID{Index: idx, Gen: slot.gen}
	if c.Label == "" {
		c.Label = fmt.Sprintf("E%d", idx)
	}
	return c.id
}

// Despawn removes an entity. Every outstanding handle to it stops resolving.
func (w *World) Despawn(id EntityID) bool {
	c, ok := w.Get(id)
	if !ok {
		return false
	}
	c.slot = nil
	slot := &w.slots[id.Index]
	slot.c = nil
	slot.gen++
	w.free = append(w.free, id.Index)
	return true
}

// Alive reports whether id still resolves to a live entity.
func (w *World) Alive(id EntityID) bool {
	_, ok := w.Get(id)
	return ok
}

// Get resolves a handle.
func (w *World) Get(id EntityID) (*Combatant, bool) {
	if id.IsZero() || int(id.Index) >= len(w.slots) {
		return nil, false
	}
	slot := w.slots[id.Index]
	if slot.c == nil || slot.gen != id.Gen {
		return nil, false
	}
	return slot.c, true
}

// Each calls fn for every live combatant in slot order. fn must not spawn
// or despawn.
func (w *World) Each(fn func(*Combatant)) {
	for i := range w.slots {
		if c := w.slots[i].c; c != nil {
			fn(c)
		}
	}
}

// Combatants returns every live combatant in slot order.
func (w *World) Combatants() []*Combatant {
	out := make([]*Combatant, 0, len(w.slots))
	w.Each(func(c *Combatant) { out = append(out, c) })
	return out
}

// CountAlive returns the number of live combatants on a team.
func (w *World) CountAlive(t Team) int {
	n := 0
	w.Each(func(c *Combatant) {
		if c.Team == t {
			n++
		}
	})
	return n
}

// --- Inventory ---

// Ammo returns how many units of t the entity carries.
func (w *World) Ammo(id EntityID, t AmmoType) int {
	c, ok := w.Get(id)
	if !ok {
		return 0
	}
	return c.ammo[t]
}

// GiveAmmo adds n units of t to the entity's inventory.
func (w *World) GiveAmmo(id EntityID, t AmmoType, n int) {
	c, ok := w.Get(id)
	if !ok || n <= 0 {
		return
	}
	c.ammo[t] += n
}

// consumeAmmo removes exactly one unit of t; false if none was carried.
func (c *Combatant) consumeAmmo(t AmmoType) bool {
	if c.ammo[t] < 1 {
		return false
	}
	c.ammo[t]--
	return true
}

// Equip replaces the entity's ranged weapon.
func (w *World) Equip(id EntityID, weapon RangedWeapon) {
	c, ok := w.Get(id)
	if !ok {
		return
	}
	wc := weapon
	c.Weapon = &wc
	c.hasFired = false
}

// --- Movement ---

// MoveTo teleports an entity to pos. Path following is external; this is
// the hook a pathing collaborator uses to report progress.
func (w *World) MoveTo(id EntityID, pos Position) {
	if c, ok := w.Get(id); ok {
		c.Pos = pos
	}
}

// Destination returns the movement target assigned to an entity.
func (w *World) Destination(id EntityID) (Position, bool) {
	c, ok := w.Get(id)
	if !ok || !c.hasDestination {
		return Position{}, false
	}
	return c.destination, true
}

func (c *Combatant) setDestination(p Position) {
	c.destination = p
	c.hasDestination = true
	if c.Task == TaskIdle {
		c.Task = TaskMove
	}
}

func (c *Combatant) clearDestination() {
	c.hasDestination = false
	if c.Task == TaskMove {
		c.Task = TaskIdle
	}
}

// --- Health ---

// ApplyDamage removes dmg health immediately. It returns the health left.
func (w *World) ApplyDamage(id EntityID, dmg int) int {
	c, ok := w.Get(id)
	if !ok {
		return 0
	}
	if dmg > 0 && c.Attackable {
		c.Health -= dmg
		w.metrics.add(w.metrics.damageDealt, int64(dmg), attribute.String("team", c.Team.String()))
	}
	return c.Health
}

// reapDead despawns every combatant at or below zero health.
func (w *World) reapDead() int {
	var dead []EntityID
	w.Each(func(c *Combatant) {
		if c.Attackable && c.Health <= 0 {
			dead = append(dead, c.id)
		}
	})
	for _, id := range dead {
		c, _ := w.Get(id)
		w.event(c.Label, c.Team.String(), "death", "killed", fmt.Sprintf("hp=%d at %s", c.Health, c.Pos), float64(c.Health))
		w.log.Debug().Str("entity", c.Label).Int("hp", c.Health).Msg("combatant killed")
		w.Despawn(id)
	}
	w.metrics.add(w.metrics.deaths, int64(len(dead)))
	return len(dead)
}

// EffectiveAttack is the formation attack multiplier for an entity; 1.0
// outside a squad.
func (w *World) EffectiveAttack(id EntityID) float64 {
	if sq := w.squadOf(id); sq != nil {
		return FormationAttackMul(sq.Formation)
	}
	return 1.0
}

// EffectiveDefense is the formation defense multiplier for an entity.
func (w *World) EffectiveDefense(id EntityID) float64 {
	if sq := w.squadOf(id); sq != nil {
		return FormationDefenseMul(sq.Formation)
	}
	return 1.0
}

// EffectiveSpeed is the formation speed multiplier for an entity.
func (w *World) EffectiveSpeed(id EntityID) float64 {
	if sq := w.squadOf(id); sq != nil {
		return FormationSpeedMul(sq.Formation)
	}
	return 1.0
}

func (w *World) squadOf(id EntityID) *Squad {
	c, ok := w.Get(id)
	if !ok || c.slot == nil {
		return nil
	}
	return w.squads[c.slot.Squad]
}
