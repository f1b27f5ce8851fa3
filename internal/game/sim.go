package game

// StepReport summarises one simulation tick.
type StepReport struct {
	Tick     int
	Acquired int
	Fired    int
	Impacts  ImpactReport
	Killed   int
	Regroup  []SquadID
	Empty    []SquadID
}

// Step advances the world by one tick of TickSeconds.
//
// Order within a tick:
//  1. squads: cohesion sweep, then re-layout of changed squads
//  2. targeting: idle armed entities acquire targets
//  3. firing: entities with a valid target shoot (ammo is spent first)
//  4. projectiles advance and expire
//  5. collisions resolve and damage commits
//  6. entities at zero health are removed
func (w *World) Step() StepReport {
	return w.StepDelta(w.tuning.TickSeconds)
}

// StepDelta advances the world by dt seconds.
func (w *World) StepDelta(dt float64) StepReport {
	w.Tick++
	rep := StepReport{Tick: w.Tick}

	w.UpdateSquads()
	for _, sq := range w.Squads() {
		if sq.NeedsRegroup {
			rep.Regroup = append(rep.Regroup, sq.ID)
		}
		if sq.Size() == 0 {
			rep.Empty = append(rep.Empty, sq.ID)
		}
	}

	rep.Acquired = w.AcquireTargets()
	rep.Fired = w.EngageTargets()

	w.AdvanceProjectiles(dt)
	rep.Impacts = w.ResolveCollisions()
	w.compactProjectiles()

	rep.Killed = w.reapDead()
	w.Clock += dt
	return rep
}

// RunTicks advances the world n ticks and returns the last report.
func (w *World) RunTicks(n int) StepReport {
	var rep StepReport
	for i := 0; i < n; i++ {
		rep = w.Step()
	}
	return rep
}

// RunUntil steps until predicate holds or maxTicks pass. It returns the
// tick at which the predicate held, or -1.
func (w *World) RunUntil(predicate func(*World) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		w.Step()
		if predicate(w) {
			return w.Tick
		}
	}
	return -1
}
