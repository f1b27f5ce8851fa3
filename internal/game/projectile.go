package game

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/image/math/f64"
)

// ProjectileID identifies a projectile within a World.
type ProjectileID int

// ProjectileKind selects the flight and impact profile of a projectile.
type ProjectileKind int

const (
	ProjectileStandard ProjectileKind = iota
	ProjectileArrow
	ProjectileBolt
	ProjectileBullet
	ProjectileExplosiveArrow
	ProjectileCannonball
)

func (k ProjectileKind) String() string {
	switch k {
	case ProjectileStandard:
		return "standard"
	case ProjectileArrow:
		return "arrow"
	case ProjectileBolt:
		return "bolt"
	case ProjectileBullet:
		return "bullet"
	case ProjectileExplosiveArrow:
		return "explosive_arrow"
	case ProjectileCannonball:
		return "cannonball"
	default:
		return "unknown"
	}
}

// ParseProjectileKind maps a projectile kind name back to its value.
func ParseProjectileKind(name string) (ProjectileKind, bool) {
	for k := ProjectileStandard; k <= ProjectileCannonball; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return ProjectileStandard, false
}

const defaultProjectileLifetime = 5.0 // seconds

// Projectile is a live shot in flight.
type Projectile struct {
	ID     ProjectileID
	Kind   ProjectileKind
	Damage int
	Owner  EntityID
	// Target is the entity the shot was aimed at. Weak: it does not steer
	// the projectile and may no longer resolve.
	Target   EntityID
	Velocity f64.Vec2
	Lifetime float64

	Piercing        bool
	Explosive       bool
	ExplosionRadius float64

	// Continuous position; Pos is the rounded grid cell.
	x, y float64
	Pos  Position

	dead bool
	// hitOnce holds entities already struck when re-hits are disabled.
	hitOnce map[EntityID]bool
}

// Alive reports whether the projectile is still in flight.
func (p *Projectile) Alive() bool {
	return !p.dead
}

// NewProjectile builds a projectile of the given kind. The kind's overrides
// are applied on top of the base damage and velocity:
//
//	standard         lifetime 5.0
//	arrow            lifetime 3.0
//	bolt             damage +2, piercing, lifetime 4.0
//	bullet           velocity ×3, piercing, lifetime 2.0
//	explosive arrow  explosive r=2.0, lifetime 3.0
//	cannonball       damage ×3, velocity ×0.5, explosive r=4.0, lifetime 5.0
func NewProjectile(kind ProjectileKind, owner EntityID, at Position, velocity f64.Vec2, damage int) *Projectile {
	p := &Projectile{
		Kind:     kind,
		Damage:   damage,
		Owner:    owner,
		Velocity: velocity,
		Lifetime: defaultProjectileLifetime,
		x:        float64(at.X),
		y:        float64(at.Y),
		Pos:      at,
	}
	switch kind {
	case ProjectileArrow:
		p.Lifetime = 3.0
	case ProjectileBolt:
		p.Damage = damage + 2
		p.Piercing = true
		p.Lifetime = 4.0
	case ProjectileBullet:
		p.Velocity = scaleVec(velocity, 3.0)
		p.Piercing = true
		p.Lifetime = 2.0
	case ProjectileExplosiveArrow:
		p.Lifetime = 3.0
		p.Explosive = true
		p.ExplosionRadius = 2.0
	case ProjectileCannonball:
		p.Damage = damage * 3
		p.Velocity = scaleVec(velocity, 0.5)
		p.Explosive = true
		p.ExplosionRadius = 4.0
	}
	return p
}

// AddProjectile puts a projectile into the live set and returns its id.
func (w *World) AddProjectile(p *Projectile) ProjectileID {
	w.nextProjectile++
	p.ID = w.nextProjectile
	w.projectiles = append(w.projectiles, p)
	return p.ID
}

// Projectiles returns the live projectile set in spawn order.
func (w *World) Projectiles() []*Projectile {
	out := make([]*Projectile, 0, len(w.projectiles))
	for _, p := range w.projectiles {
		if !p.dead {
			out = append(out, p)
		}
	}
	return out
}

// FireOutcome says why a fire attempt did or did not produce a shot.
type FireOutcome int

const (
	FireOK FireOutcome = iota
	FireNoWeapon
	FireNoAmmo
	FireOutOfRange
	FireSameCell
	FireReloading
	FireInvalidAttacker
)

func (o FireOutcome) String() string {
	switch o {
	case FireOK:
		return "fired"
	case FireNoWeapon:
		return "no_weapon"
	case FireNoAmmo:
		return "no_ammo"
	case FireOutOfRange:
		return "out_of_range"
	case FireSameCell:
		return "same_cell"
	case FireReloading:
		return "reloading"
	case FireInvalidAttacker:
		return "invalid_attacker"
	default:
		return "unknown"
	}
}

// Fire discharges the attacker's weapon at targetPos. Nothing changes
// unless the attacker carries the weapon's ammo, the target is in range,
// the weapon has reloaded and the target is not in the attacker's own cell.
// A successful shot spends exactly one round and spawns one projectile with
// damage = weapon damage + strength/2.
func (w *World) Fire(attacker EntityID, targetPos Position) (*Projectile, FireOutcome) {
	return w.fireAt(attacker, EntityID{}, targetPos)
}

func (w *World) fireAt(attacker, target EntityID, targetPos Position) (*Projectile, FireOutcome) {
	c, ok := w.Get(attacker)
	if !ok {
		return nil, FireInvalidAttacker
	}
	if c.Weapon == nil {
		return nil, FireNoWeapon
	}
	weapon := *c.Weapon

	if c.ammo[weapon.Ammo] < 1 {
		return nil, FireNoAmmo
	}
	if !weapon.InRange(c.Pos.Distance(targetPos)) {
		return nil, FireOutOfRange
	}
	if c.hasFired && w.Clock-c.lastShotAt < weapon.ReloadSeconds {
		return nil, FireReloading
	}

	aim := targetPos
	if w.tuning.AccuracyRolls {
		aim = w.scatterAim(c, weapon, targetPos)
	}
	dir, ok := c.Pos.Direction(aim)
	if !ok {
		return nil, FireSameCell
	}

	c.consumeAmmo(weapon.Ammo)
	c.lastShotAt = w.Clock
	c.hasFired = true

	damage := weapon.Damage + c.Strength/2
	p := NewProjectile(weapon.Projectile, attacker, c.Pos, scaleVec(dir, weapon.ProjectileSpeed), damage)
	p.Target = target
	w.AddProjectile(p)

	w.metrics.add(w.metrics.shotsFired, 1, attribute.String("weapon", weapon.Kind.String()))
	w.event(c.Label, c.Team.String(), "fire", weapon.Kind.String(),
		fmt.Sprintf("%s -> %s dmg=%d ammo=%d", c.Pos, targetPos, p.Damage, c.ammo[weapon.Ammo]), float64(p.Damage))
	w.log.Debug().Str("attacker", c.Label).Str("weapon", weapon.Kind.String()).
		Int("damage", p.Damage).Int("ammo_left", c.ammo[weapon.Ammo]).Msg("shot fired")
	return p, FireOK
}

// scatterAim rolls the shot's hit chance and, on a miss, shifts the aim
// point by up to one cell on each axis.
func (w *World) scatterAim(c *Combatant, weapon RangedWeapon, target Position) Position {
	chance := HitChance(weapon.Accuracy, c.Pos.Distance(target), weapon.Range, c.Skill, w.tuning.Weather)
	if w.rng.Float64() < chance {
		return target
	}
	return target.Offset(w.rng.Intn(3)-1, w.rng.Intn(3)-1)
}

// AdvanceProjectiles moves every live projectile by velocity × dt × scale
// and expires those whose lifetime runs out.
func (w *World) AdvanceProjectiles(dt float64) {
	scale := w.tuning.MoveScale
	expired := 0
	for _, p := range w.projectiles {
		if p.dead {
			continue
		}
		p.x += p.Velocity[0] * dt * scale
		p.y += p.Velocity[1] * dt * scale
		p.Pos = cellOf(p.x, p.y, p.Pos.Z)
		p.Lifetime -= dt
		w.simLog.AddVerbose(w.Tick, "--", "--", "projectile", "move",
			fmt.Sprintf("#%d at %s life=%.2f", p.ID, p.Pos, p.Lifetime), p.Lifetime)
		if p.Lifetime <= 0 {
			p.dead = true
			expired++
			w.event("--", "--", "projectile", "expired", fmt.Sprintf("#%d %s at %s", p.ID, p.Kind, p.Pos), 0)
		}
	}
	w.metrics.add(w.metrics.expired, int64(expired))
}

// compactProjectiles drops dead projectiles from the live set.
func (w *World) compactProjectiles() {
	kept := w.projectiles[:0]
	for _, p := range w.projectiles {
		if !p.dead {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = kept
}
