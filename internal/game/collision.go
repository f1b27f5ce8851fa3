package game

import "fmt"

// damageLedger accumulates damage per entity during the collision phase so
// that several hits on one target in the same tick add up before any
// entity is removed.
type damageLedger struct {
	pending map[EntityID]int
	order   []EntityID
}

func (l *damageLedger) reset() {
	l.pending = make(map[EntityID]int)
	l.order = l.order[:0]
}

func (l *damageLedger) add(id EntityID, dmg int) {
	if dmg <= 0 {
		return
	}
	if _, seen := l.pending[id]; !seen {
		l.order = append(l.order, id)
	}
	l.pending[id] += dmg
}

// Pending returns the uncommitted damage queued for an entity.
func (l *damageLedger) Pending(id EntityID) int {
	return l.pending[id]
}

// commitDamage applies the ledger in first-hit order and clears it.
func (w *World) commitDamage() {
	for _, id := range w.ledger.order {
		w.ApplyDamage(id, w.ledger.pending[id])
	}
	w.ledger.reset()
}

// AreaDamage is the explosion share at dist from the epicentre: the halved
// base damage scaled linearly down to zero at the radius, truncated toward
// zero. Outside the radius it is 0.
func AreaDamage(damage int, dist, radius float64) int {
	if radius <= 0 || dist > radius {
		return 0
	}
	return int(float64(damage/2) * (1.0 - dist/radius))
}

// ImpactReport summarises one collision pass.
type ImpactReport struct {
	Blocked    int // projectiles stopped by walls
	Hits       int // direct combatant hits
	Explosions int
	Destroyed  int // projectiles removed on impact
}

// ResolveCollisions checks every live projectile against terrain and
// attackable combatants. Wall cells destroy the projectile without damage.
// Each attackable entity sharing the projectile's cell, other than its
// owner, takes the projectile's full damage; explosive projectiles then hit
// every attackable entity within the radius of the impact cell with
// AreaDamage, the struck entity included. A non-piercing projectile is
// removed after hitting everything in its cell. Damage is committed once,
// after all projectiles.
func (w *World) ResolveCollisions() ImpactReport {
	var rep ImpactReport
	for _, p := range w.projectiles {
		if p.dead {
			continue
		}
		if w.terrain.IsWall(p.Pos) {
			p.dead = true
			rep.Blocked++
			w.event("--", "--", "projectile", "blocked", fmt.Sprintf("#%d %s at %s", p.ID, p.Kind, p.Pos), 0)
			continue
		}
		w.resolveCombatantHits(p, &rep)
	}
	w.commitDamage()

	w.metrics.add(w.metrics.blocked, int64(rep.Blocked))
	w.metrics.add(w.metrics.hits, int64(rep.Hits))
	w.metrics.add(w.metrics.explosions, int64(rep.Explosions))
	return rep
}

func (w *World) resolveCombatantHits(p *Projectile, rep *ImpactReport) {
	var struck []*Combatant
	w.Each(func(c *Combatant) {
		if !c.Attackable || c.id == p.Owner || !c.Pos.SameCell(p.Pos) {
			return
		}
		if !w.tuning.PierceRehit && p.hitOnce[c.id] {
			return
		}
		struck = append(struck, c)
	})

	for _, c := range struck {
		w.ledger.add(c.id, p.Damage)
		rep.Hits++
		w.event(c.Label, c.Team.String(), "hit", p.Kind.String(),
			fmt.Sprintf("#%d dmg=%d at %s", p.ID, p.Damage, p.Pos), float64(p.Damage))
		w.log.Debug().Int("projectile", int(p.ID)).Str("target", c.Label).Int("damage", p.Damage).Msg("projectile hit")

		if !w.tuning.PierceRehit {
			if p.hitOnce == nil {
				p.hitOnce = make(map[EntityID]bool)
			}
			p.hitOnce[c.id] = true
		}
		if p.Explosive {
			w.explode(p, c.Pos)
			rep.Explosions++
		}
	}
	if len(struck) > 0 && !p.Piercing {
		p.dead = true
		rep.Destroyed++
	}
}

// explode queues AreaDamage for every attackable entity within the
// projectile's radius of center. The owner is not exempt.
func (w *World) explode(p *Projectile, center Position) {
	touched := 0
	w.Each(func(c *Combatant) {
		if !c.Attackable {
			return
		}
		d := center.Distance(c.Pos)
		if d > p.ExplosionRadius {
			return
		}
		dmg := AreaDamage(p.Damage, d, p.ExplosionRadius)
		w.ledger.add(c.id, dmg)
		touched++
	})
	w.event("--", "--", "explosion", p.Kind.String(),
		fmt.Sprintf("#%d at %s r=%.1f touched=%d", p.ID, center, p.ExplosionRadius, touched), float64(touched))
}
