package game

import "fmt"

// EntityID is a generation-checked handle into the World's combatant arena.
// A handle whose generation no longer matches its slot refers to a dead or
// despawned entity. The zero value never resolves.
type EntityID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether the handle was never assigned.
func (id EntityID) IsZero() bool {
	return id.Gen == 0
}

func (id EntityID) String() string {
	if id.IsZero() {
		return "e-"
	}
	return fmt.Sprintf("e%d.%d", id.Index, id.Gen)
}

// Team distinguishes opposing sides. TeamNone is hostile to everyone.
type Team int

const (
	TeamNone Team = iota
	TeamRed
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "none"
	}
}

// hostile reports whether a and b may target each other.
func hostile(a, b Team) bool {
	return a == TeamNone || b == TeamNone || a != b
}

// Task is the high-level behaviour an entity is currently running.
type Task int

const (
	TaskIdle Task = iota
	TaskMove      // heading to an assigned destination
	TaskFight     // engaging its target
)

func (t Task) String() string {
	switch t {
	case TaskIdle:
		return "idle"
	case TaskMove:
		return "move"
	case TaskFight:
		return "fight"
	default:
		return "unknown"
	}
}

// FormationPosition is a squad member's slot in its formation.
type FormationPosition struct {
	Squad  SquadID
	Rank   int      // 0 = front line
	Offset Position // relative to the formation centre, Z unused
}

// Combatant is one entity the combat core knows about.
type Combatant struct {
	id    EntityID
	Label string
	Team  Team
	Pos   Position

	Health    int
	MaxHealth int
	Strength  int
	Skill     int

	// Attackable entities can be targeted and take damage.
	Attackable bool
	Weapon     *RangedWeapon
	Task       Task

	ammo map[AmmoType]int

	// Targeting relation. Weak: revalidate through World.Target.
	target    EntityID
	hasTarget bool

	// Time of the last shot in sim seconds, for reload gating.
	lastShotAt float64
	hasFired   bool

	destination    Position
	hasDestination bool

	slot *FormationPosition
}

// ID returns the handle the combatant was spawned with.
func (c *Combatant) ID() EntityID {
	return c.id
}

// Slot returns the combatant's formation slot, or nil outside a squad.
func (c *Combatant) Slot() *FormationPosition {
	return c.slot
}

// CombatantOption configures a combatant at spawn time.
type CombatantOption func(*Combatant)

// WithTeam sets the combatant's side.
func WithTeam(t Team) CombatantOption {
	return func(c *Combatant) { c.Team = t }
}

// WithHealth sets both current and maximum health.
func WithHealth(hp int) CombatantOption {
	return func(c *Combatant) {
		c.Health = hp
		c.MaxHealth = hp
	}
}

// WithStrength sets the strength attribute used for the damage bonus.
func WithStrength(s int) CombatantOption {
	return func(c *Combatant) { c.Strength = s }
}

// WithSkill sets the marksmanship skill used by accuracy rolls.
func WithSkill(s int) CombatantOption {
	return func(c *Combatant) { c.Skill = s }
}

// WithWeapon equips a ranged weapon.
func WithWeapon(w RangedWeapon) CombatantOption {
	return func(c *Combatant) {
		wc := w
		c.Weapon = &wc
	}
}

// WithAmmo places n units of ammo in the combatant's inventory.
func WithAmmo(t AmmoType, n int) CombatantOption {
	return func(c *Combatant) { c.ammo[t] += n }
}

// NotAttackable spawns an entity that cannot be targeted or damaged.
func NotAttackable() CombatantOption {
	return func(c *Combatant) { c.Attackable = false }
}

const defaultHealth = 100
