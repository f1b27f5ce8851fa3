package game

import (
	"fmt"
	"sort"
	"strings"
)

// SquadReport captures a single squad's state at one point in time.
type SquadReport struct {
	Team      Team
	SquadID   SquadID
	Formation FormationType
	Stance    CombatStance
	Alive     int
	Spread    float64
	Regroup   bool
}

// SkirmishReport is a snapshot of a TestSim run built from the world and
// its SimLog.
type SkirmishReport struct {
	Tick int

	RedAlive, BlueAlive int
	RedTotal, BlueTotal int

	ShotsFired  int
	Hits        int
	Explosions  int
	Blocked     int
	Expired     int
	Deaths      int
	Regroups    int
	Successions int

	FirstShotTick  int // -1 when nobody fired
	FirstDeathTick int

	Squads  []SquadReport
	Outcome BattleOutcomeReason
}

// BuildReport summarises a TestSim.
func BuildReport(ts *TestSim) SkirmishReport {
	w := ts.World
	sl := ts.SimLog
	r := SkirmishReport{
		Tick:           w.Tick,
		RedAlive:       w.CountAlive(TeamRed),
		BlueAlive:      w.CountAlive(TeamBlue),
		RedTotal:       ts.TeamTotal(TeamRed),
		BlueTotal:      ts.TeamTotal(TeamBlue),
		ShotsFired:     sl.CountCategory("fire", ""),
		Hits:           sl.CountCategory("hit", ""),
		Explosions:     sl.CountCategory("explosion", ""),
		Blocked:        sl.CountCategory("projectile", "blocked"),
		Expired:        sl.CountCategory("projectile", "expired"),
		Deaths:         sl.CountCategory("death", ""),
		Regroups:       sl.CountCategory("cohesion", "regroup"),
		Successions:    sl.CountCategory("squad", "leader_succession"),
		FirstShotTick:  firstTick(sl, "fire"),
		FirstDeathTick: firstTick(sl, "death"),
		Outcome:        ts.Outcome(),
	}
	for _, sq := range w.Squads() {
		r.Squads = append(r.Squads, SquadReport{
			Team:      ts.SquadTeam[sq.ID],
			SquadID:   sq.ID,
			Formation: sq.Formation,
			Stance:    sq.Stance,
			Alive:     sq.Size(),
			Spread:    sq.Spread,
			Regroup:   sq.NeedsRegroup,
		})
	}
	sort.Slice(r.Squads, func(i, j int) bool { return r.Squads[i].SquadID < r.Squads[j].SquadID })
	return r
}

func firstTick(sl *SimLog, category string) int {
	for _, e := range sl.Entries() {
		if e.Category == category {
			return e.Tick
		}
	}
	return -1
}

// HitRate is hits per shot, 0 when nothing was fired.
func (r SkirmishReport) HitRate() float64 {
	if r.ShotsFired == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.ShotsFired)
}

// Format renders the report as a fixed-width text block.
func (r SkirmishReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick=%d outcome=%s (%s)\n", r.Tick, r.Outcome.Outcome, r.Outcome.Description)
	fmt.Fprintf(&sb, "  alive: red=%d/%d blue=%d/%d\n", r.RedAlive, r.RedTotal, r.BlueAlive, r.BlueTotal)
	fmt.Fprintf(&sb, "  shots=%d hits=%d (%.0f%%) explosions=%d blocked=%d expired=%d\n",
		r.ShotsFired, r.Hits, r.HitRate()*100, r.Explosions, r.Blocked, r.Expired)
	fmt.Fprintf(&sb, "  deaths=%d regroups=%d successions=%d first_shot=%d first_death=%d\n",
		r.Deaths, r.Regroups, r.Successions, r.FirstShotTick, r.FirstDeathTick)
	for _, sq := range r.Squads {
		fmt.Fprintf(&sb, "  squad#%-2d %-4s %-9s %-12s alive=%d spread=%.1f regroup=%t\n",
			sq.SquadID, sq.Team, sq.Formation, sq.Stance, sq.Alive, sq.Spread, sq.Regroup)
	}
	return sb.String()
}
