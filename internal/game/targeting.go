package game

import (
	"fmt"
	"math"
)

// Target returns the entity's current target after revalidating it. A
// target that died, despawned or stopped being attackable is dropped and
// the attacker falls back to idle.
func (w *World) Target(id EntityID) (EntityID, bool) {
	c, ok := w.Get(id)
	if !ok || !c.hasTarget {
		return EntityID{}, false
	}
	t, ok := w.Get(c.target)
	if !ok || !t.Attackable {
		c.hasTarget = false
		c.target = EntityID{}
		if c.Task == TaskFight {
			c.Task = TaskIdle
		}
		return EntityID{}, false
	}
	return c.target, true
}

// ClearTarget drops the entity's targeting relation.
func (w *World) ClearTarget(id EntityID) {
	if c, ok := w.Get(id); ok {
		c.hasTarget = false
		c.target = EntityID{}
		if c.Task == TaskFight {
			c.Task = TaskIdle
		}
	}
}

// canEngage reports whether the entity is allowed to pick or shoot targets.
func (w *World) canEngage(c *Combatant) bool {
	if c.Weapon == nil {
		return false
	}
	if sq := w.squadOf(c.id); sq != nil && sq.Stance == StanceNoAttack {
		return false
	}
	return true
}

// nearestTarget scans attackable entities in slot order and returns the
// closest hostile one within the attacker's weapon range. On equal
// distances the first one scanned wins.
func (w *World) nearestTarget(c *Combatant) (*Combatant, float64) {
	var best *Combatant
	bestDist := math.Inf(1)
	w.Each(func(o *Combatant) {
		if o == c || !o.Attackable || !hostile(c.Team, o.Team) {
			return
		}
		d := c.Pos.Distance(o.Pos)
		if d > c.Weapon.Range {
			return
		}
		if d < bestDist {
			best = o
			bestDist = d
		}
	})
	return best, bestDist
}

// AcquireTargets gives every armed entity without a valid target the
// nearest hostile attackable entity in weapon range, and switches it to
// TaskFight. It returns the number of new targeting relations.
func (w *World) AcquireTargets() int {
	acquired := 0
	w.Each(func(c *Combatant) {
		if !w.canEngage(c) {
			return
		}
		if _, ok := w.Target(c.id); ok {
			return
		}
		t, dist := w.nearestTarget(c)
		if t == nil {
			return
		}
		c.target = t.id
		c.hasTarget = true
		c.Task = TaskFight
		acquired++
		w.event(c.Label, c.Team.String(), "target", "acquired", fmt.Sprintf("%s at %.1f", t.Label, dist), dist)
	})
	return acquired
}

// EngageTargets has every entity with a valid target attempt one shot.
// Failed attempts leave the targeting relation in place for next tick.
func (w *World) EngageTargets() int {
	type shot struct {
		attacker, target EntityID
		at               Position
	}
	var shots []shot
	w.Each(func(c *Combatant) {
		if !w.canEngage(c) {
			return
		}
		tid, ok := w.Target(c.id)
		if !ok {
			return
		}
		t, _ := w.Get(tid)
		shots = append(shots, shot{attacker: c.id, target: tid, at: t.Pos})
	})

	fired := 0
	for _, s := range shots {
		if _, out := w.fireAt(s.attacker, s.target, s.at); out == FireOK {
			fired++
		}
	}
	return fired
}
