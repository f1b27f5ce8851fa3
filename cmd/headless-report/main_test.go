package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/tactical-core/internal/game"
)

func TestTeamSurvivalCounts(t *testing.T) {
	all := []runStats{
		{redTotal: 6, blueTotal: 6, redSurvivors: 4, blueSurvivors: 1},
		{redTotal: 6, blueTotal: 6, redSurvivors: 0, blueSurvivors: 3},
	}

	redTotal, blueTotal, redSurvivors, blueSurvivors := teamSurvivalCounts(all)
	assert.Equal(t, 12, redTotal)
	assert.Equal(t, 12, blueTotal)
	assert.Equal(t, 4, redSurvivors)
	assert.Equal(t, 4, blueSurvivors)
}

func TestDetectStalemate_TrueWhenMutualSurvivalAndFewHits(t *testing.T) {
	rs := runStats{
		redTotal: 6, blueTotal: 6, redSurvivors: 5, blueSurvivors: 6,
		report: game.SkirmishReport{ShotsFired: 40, Hits: 4},
	}

	isStalemate, reason := detectStalemate(rs)
	assert.True(t, isStalemate)
	assert.Contains(t, reason, "high_mutual_survival")
}

func TestDetectStalemate_FalseWhenSquadDestroyed(t *testing.T) {
	rs := runStats{
		redTotal: 6, blueTotal: 6, redSurvivors: 4, blueSurvivors: 4,
		report: game.SkirmishReport{
			ShotsFired: 20,
			Outcome:    game.BattleOutcomeReason{BlueSquadsLost: 1},
		},
	}

	isStalemate, reason := detectStalemate(rs)
	assert.False(t, isStalemate)
	assert.Equal(t, "squad_destroyed", reason)
}

func TestDetectStalemate_FalseWhenAttritionDecisive(t *testing.T) {
	rs := runStats{redTotal: 6, blueTotal: 6, redSurvivors: 2, blueSurvivors: 5}

	isStalemate, reason := detectStalemate(rs)
	assert.False(t, isStalemate)
	assert.Equal(t, "decisive_attrition", reason)
}

func TestScenariosBuildAndRun(t *testing.T) {
	for name, build := range scenarios {
		t.Run(name, func(t *testing.T) {
			rs := runScenario(build, 1, 7, 240, game.DefaultTuning(), false, zerolog.Nop())
			assert.Positive(t, rs.redTotal)
			assert.Positive(t, rs.blueTotal)
			assert.LessOrEqual(t, rs.redSurvivors, rs.redTotal)
			assert.LessOrEqual(t, rs.blueSurvivors, rs.blueTotal)
		})
	}
}

func TestVolleyExchangesFire(t *testing.T) {
	rs := runScenario(scenarioVolley, 1, 42, 600, game.DefaultTuning(), false, zerolog.Nop())
	require.Positive(t, rs.report.ShotsFired)
	assert.GreaterOrEqual(t, rs.report.FirstShotTick, 1)

	var buf bytes.Buffer
	printRun(&buf, rs)
	printAggregate(&buf, []runStats{rs})
	assert.Contains(t, buf.String(), "--- Run 1 (seed=42) ---")
	assert.Contains(t, buf.String(), "=== Aggregate ===")
}

func TestVerboseRunPrintsEventLog(t *testing.T) {
	quiet := runScenario(scenarioVolley, 1, 42, 120, game.DefaultTuning(), false, zerolog.Nop())
	assert.Empty(t, quiet.eventLog)

	rs := runScenario(scenarioVolley, 1, 42, 120, game.DefaultTuning(), true, zerolog.Nop())
	var buf bytes.Buffer
	printRun(&buf, rs)
	assert.Contains(t, buf.String(), "[T=")
	assert.Contains(t, buf.String(), "--- Summary at T=")
}

func TestJoinCounts(t *testing.T) {
	assert.Equal(t, "none", joinCounts(nil))
	assert.Equal(t, "draw:1,red_victory:2", joinCounts(map[string]int{"red_victory": 2, "draw": 1}))
}
