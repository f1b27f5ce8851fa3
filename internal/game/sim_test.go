package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, sl *SimLog) {
	t.Helper()
	entries := sl.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

func TestStep_ShotLandsOnSecondTick(t *testing.T) {
	w := newTestWorld()
	red := spawnArcher(w, "R0", Pos(0, 0), TeamRed, 3)
	blue := w.Spawn("B0", Pos(7, 0), WithTeam(TeamBlue), WithHealth(8))

	rep := w.Step()
	assert.Equal(t, 1, rep.Tick)
	assert.Equal(t, 1, rep.Acquired)
	assert.Equal(t, 1, rep.Fired)
	require.Len(t, w.Projectiles(), 1)
	assert.Equal(t, Pos(3, 0), w.Projectiles()[0].Pos)
	assert.Equal(t, 2, w.Ammo(red, "arrow"))

	rep = w.Step()
	assert.Equal(t, 0, rep.Fired, "still reloading")
	assert.Equal(t, 1, rep.Impacts.Hits)
	assert.Equal(t, 1, rep.Killed)
	assert.False(t, w.Alive(blue))
	assert.Empty(t, w.Projectiles())

	w.Step()
	_, ok := w.Target(red)
	assert.False(t, ok)
	c, _ := w.Get(red)
	assert.Equal(t, TaskIdle, c.Task)
	if t.Failed() {
		dumpLog(t, w.SimLog())
	}
}

func TestStep_ClockAdvances(t *testing.T) {
	w := newTestWorld()
	w.RunTicks(60)
	assert.Equal(t, 60, w.Tick)
	assert.InDelta(t, 1.0, w.Clock, 1e-9)

	w.StepDelta(0.5)
	assert.InDelta(t, 1.5, w.Clock, 1e-9)
}

func TestStep_ReportsRegroupAndEmpty(t *testing.T) {
	w := newTestWorld()
	spread := w.CreateSquad(spawnAt(w, Pos(0, 0), Pos(30, 0)), FormationLine)
	lost := spawnAt(w, Pos(50, 50))
	empty := w.CreateSquad(lost, FormationLine)
	w.Despawn(lost[0])

	rep := w.Step()
	assert.Equal(t, []SquadID{spread}, rep.Regroup)
	assert.Equal(t, []SquadID{empty}, rep.Empty)
}

func TestRunUntil(t *testing.T) {
	w := newTestWorld()
	got := w.RunUntil(func(w *World) bool { return w.Tick == 5 }, 10)
	assert.Equal(t, 5, got)
	assert.Equal(t, -1, w.RunUntil(func(*World) bool { return false }, 3))
	assert.Equal(t, 8, w.Tick)
}

// --- Harness scenarios ---

func TestScenario_ArcherDuel(t *testing.T) {
	t.Log("=== TestScenario_ArcherDuel ===")
	t.Log("--- Setup: red bow vs blue crossbow, 7 cells apart ---")

	ts := NewTestSim(
		WithMapSize(32, 32),
		WithSeed(42),
		WithRedUnit(0, 5, 10, WeaponBow, 20),
		WithBlueUnit(1, 12, 10, WeaponCrossbow, 20),
	)
	tick := ts.RunUntil(func(ts *TestSim) bool {
		return ts.World.CountAlive(TeamBlue) == 0 || ts.World.CountAlive(TeamRed) == 0
	}, 2000)
	t.Log(ts.SimLog.Summary(ts.World))

	require.Positive(t, tick, "duel should resolve")
	assert.Equal(t, 1, ts.World.CountAlive(TeamRed))
	assert.Equal(t, 0, ts.World.CountAlive(TeamBlue))

	red, ok := ts.Unit(0)
	require.True(t, ok)
	assert.Less(t, red.Health, defaultHealth)
	_, ok = ts.Unit(1)
	assert.False(t, ok)

	r := BuildReport(ts)
	assert.Equal(t, OutcomeRedVictory, r.Outcome.Outcome)
	assert.Equal(t, 1, r.FirstShotTick)
	assert.Equal(t, tick, r.FirstDeathTick)
	assert.GreaterOrEqual(t, r.Hits, 13)
	assert.Equal(t, 1, r.Deaths)
	assert.LessOrEqual(t, r.Hits, r.ShotsFired)
	assert.Contains(t, r.Format(), "red_victory")
	if t.Failed() {
		dumpLog(t, ts.SimLog)
	}
}

func TestScenario_SquadWalksIntoLine(t *testing.T) {
	ts := NewTestSim(
		WithMoveEvery(1),
		WithRedUnit(0, 10, 10, WeaponSling, 5),
		WithRedUnit(1, 0, 0, WeaponSling, 5),
		WithRedUnit(2, 20, 0, WeaponSling, 5),
		WithRedSquad(FormationLine, 0, 1, 2),
	)
	ts.RunTicks(30)

	want := []Position{Pos(9, 10), Pos(10, 10), Pos(11, 10)}
	for i, p := range want {
		c, ok := ts.Unit(i)
		require.True(t, ok)
		assert.Equal(t, p, c.Pos, "unit %d", i)
		_, moving := ts.World.Destination(c.ID())
		assert.False(t, moving, "unit %d should have arrived", i)
	}
	assert.True(t, ts.SimLog.HasEntry("cohesion", "regroup", ""))
	assert.Len(t, ts.SquadsOf(TeamRed), 1)
	assert.Empty(t, ts.SquadsOf(TeamBlue))
}

func TestScenario_AutoRegroupReformsLine(t *testing.T) {
	ts := NewTestSim(
		WithMoveEvery(1),
		WithAutoRegroup(true),
		WithRedUnit(0, 0, 0, WeaponBow, 1),
		WithRedUnit(1, 24, 0, WeaponBow, 1),
		WithRedSquad(FormationWedge, 0, 1),
	)
	ts.RunTicks(40)

	sid := ts.SquadsOf(TeamRed)[0]
	sq, _ := ts.World.Squad(sid)
	assert.Equal(t, FormationLine, sq.Formation)
	assert.False(t, sq.NeedsRegroup)

	a, _ := ts.Unit(0)
	b, _ := ts.Unit(1)
	assert.Equal(t, Pos(11, 0), a.Pos)
	assert.Equal(t, Pos(12, 0), b.Pos)
}

func TestScenario_WallBlocksVolley(t *testing.T) {
	ts := NewTestSim(
		WithMapSize(20, 20),
		WithWall(8, 0, 1, 20),
		WithMoveEvery(0),
		WithRedUnit(0, 5, 5, WeaponBow, 3),
		WithBlueUnit(1, 12, 5, WeaponSling, 0),
	)
	ts.RunTicks(200)

	blue, ok := ts.Unit(1)
	require.True(t, ok)
	assert.Equal(t, defaultHealth, blue.Health)
	r := BuildReport(ts)
	assert.Equal(t, 3, r.ShotsFired)
	assert.Equal(t, 3, r.Blocked)
	assert.Equal(t, 0, r.Hits)
	assert.Equal(t, OutcomeInconclusive, r.Outcome.Outcome)
}

func TestTestSim_SquadIgnoresOtherTeamIDs(t *testing.T) {
	ts := NewTestSim(
		WithRedUnit(0, 0, 0, WeaponBow, 1),
		WithBlueUnit(1, 1, 0, WeaponBow, 1),
		WithRedSquad(FormationLine, 0, 1),
		WithBlueSquad(FormationLine, 0),
	)
	require.Len(t, ts.SquadsOf(TeamRed), 1)
	assert.Empty(t, ts.SquadsOf(TeamBlue))
	sq, _ := ts.World.Squad(ts.SquadsOf(TeamRed)[0])
	assert.Equal(t, 1, sq.Size())
	assert.Equal(t, 1, ts.TeamTotal(TeamRed))
	assert.Equal(t, 1, ts.TeamTotal(TeamBlue))
}
