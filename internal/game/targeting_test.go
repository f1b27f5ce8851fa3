package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnArcher(w *World, label string, p Position, team Team, ammo int) EntityID {
	bow := DefaultWeapon(WeaponBow)
	return w.Spawn(label, p, WithTeam(team), WithWeapon(bow), WithAmmo(bow.Ammo, ammo))
}

func TestAcquireTargets_Nearest(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	w.Spawn("B0", Pos(5, 0), WithTeam(TeamBlue))
	near := w.Spawn("B1", Pos(3, 0), WithTeam(TeamBlue))
	w.Spawn("B2", Pos(20, 0), WithTeam(TeamBlue))

	assert.Equal(t, 1, w.AcquireTargets())
	got, ok := w.Target(red)
	require.True(t, ok)
	assert.Equal(t, near, got)

	c, _ := w.Get(red)
	assert.Equal(t, TaskFight, c.Task)
}

func TestAcquireTargets_NeverSelf(t *testing.T) {
	w := newTestWorld()
	lone := spawnArcher(w, "N0", Pos(0, 0), TeamNone, 5)

	assert.Equal(t, 0, w.AcquireTargets())
	_, ok := w.Target(lone)
	assert.False(t, ok)
}

func TestAcquireTargets_TieGoesToFirstSpawned(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	first := w.Spawn("B0", Pos(0, 3), WithTeam(TeamBlue))
	w.Spawn("B1", Pos(3, 0), WithTeam(TeamBlue))

	w.AcquireTargets()
	got, _ := w.Target(red)
	assert.Equal(t, first, got)
}

func TestAcquireTargets_Filters(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	w.Spawn("R1", Pos(1, 0), WithTeam(TeamRed))
	w.Spawn("post", Pos(1, 1), WithTeam(TeamBlue), NotAttackable())
	w.Spawn("far", Pos(9, 0), WithTeam(TeamBlue))

	assert.Equal(t, 0, w.AcquireTargets())
	_, ok := w.Target(red)
	assert.False(t, ok)

	w.Spawn("edge", Pos(8, 0), WithTeam(TeamBlue))
	assert.Equal(t, 1, w.AcquireTargets(), "range is inclusive")
}

func TestAcquireTargets_UnarmedNeverTargets(t *testing.T) {
	w := newTestWorld()
	w.Spawn("R0", Pos(0, 0), WithTeam(TeamRed))
	w.Spawn("B0", Pos(1, 0), WithTeam(TeamBlue))
	assert.Equal(t, 0, w.AcquireTargets())
}

func TestAcquireTargets_KeepsValidTarget(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	far := w.Spawn("B0", Pos(6, 0), WithTeam(TeamBlue))
	w.AcquireTargets()

	w.Spawn("B1", Pos(1, 0), WithTeam(TeamBlue))
	assert.Equal(t, 0, w.AcquireTargets())
	got, _ := w.Target(red)
	assert.Equal(t, far, got)
}

func TestTarget_StaleReferenceRevalidated(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	blue := w.Spawn("B0", Pos(4, 0), WithTeam(TeamBlue))
	w.AcquireTargets()
	w.Despawn(blue)

	_, ok := w.Target(red)
	assert.False(t, ok)
	c, _ := w.Get(red)
	assert.Equal(t, TaskIdle, c.Task)
	assert.Equal(t, 0, w.EngageTargets(), "stale target must not be fired on")

	next := w.Spawn("B1", Pos(2, 0), WithTeam(TeamBlue))
	assert.Equal(t, 1, w.AcquireTargets())
	got, _ := w.Target(red)
	assert.Equal(t, next, got)
}

func TestClearTarget(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	w.Spawn("B0", Pos(4, 0), WithTeam(TeamBlue))
	w.AcquireTargets()

	w.ClearTarget(red)
	_, ok := w.Target(red)
	assert.False(t, ok)
}

func TestEngageTargets_FailedShotKeepsTarget(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 0)
	blue := w.Spawn("B0", Pos(4, 0), WithTeam(TeamBlue))
	w.AcquireTargets()

	assert.Equal(t, 0, w.EngageTargets())
	assert.Empty(t, w.Projectiles())
	got, ok := w.Target(red)
	assert.True(t, ok)
	assert.Equal(t, blue, got)
}

func TestEngageTargets_FiresAtTargetCell(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 5)
	blue := w.Spawn("B0", Pos(0, 4), WithTeam(TeamBlue))
	w.AcquireTargets()

	assert.Equal(t, 1, w.EngageTargets())
	ps := w.Projectiles()
	require.Len(t, ps, 1)
	assert.Equal(t, red, ps[0].Owner)
	assert.Equal(t, blue, ps[0].Target)
	assert.InDelta(t, 0.0, ps[0].Velocity[0], 1e-12)
	assert.InDelta(t, 10.0, ps[0].Velocity[1], 1e-12)
}
