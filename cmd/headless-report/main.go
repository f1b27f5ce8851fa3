package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Garsondee/tactical-core/internal/config"
	"github.com/Garsondee/tactical-core/internal/game"
	"github.com/Garsondee/tactical-core/internal/logging"
)

type runStats struct {
	runIndex int
	seed     int64

	redTotal      int
	blueTotal     int
	redSurvivors  int
	blueSurvivors int

	report game.SkirmishReport
	// eventLog is the full sim log plus end state, kept only with -verbose.
	eventLog string
}

// scenario builds the options for one seeded run.
type scenario func(seed int64) []game.SimOption

var scenarios = map[string]scenario{
	"volley":  scenarioVolley,
	"siege":   scenarioSiege,
	"crossed": scenarioCrossed,
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for k := range scenarios {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// scenarioVolley: two archer files seven cells apart, so arrows land in the
// enemy cell on their second tick of flight.
func scenarioVolley(seed int64) []game.SimOption {
	opts := []game.SimOption{game.WithMapSize(40, 24), game.WithSeed(seed)}
	for i := 0; i < 6; i++ {
		opts = append(opts,
			game.WithRedUnit(i, 6, 8+i, game.WeaponBow, 12),
			game.WithBlueUnit(10+i, 13, 8+i, game.WeaponCrossbow, 8),
		)
	}
	return append(opts,
		game.WithRedSquad(game.FormationColumn, 0, 1, 2, 3, 4, 5),
		game.WithBlueSquad(game.FormationColumn, 10, 11, 12, 13, 14, 15),
	)
}

// scenarioSiege: a walled red battery with a door, facing a blue wedge.
func scenarioSiege(seed int64) []game.SimOption {
	opts := []game.SimOption{
		game.WithMapSize(48, 32),
		game.WithSeed(seed),
		game.WithWall(12, 10, 1, 4),
		game.WithWall(12, 15, 1, 4),
		game.WithAutoRegroup(true),
		game.WithRedUnit(0, 8, 14, game.WeaponCannon, 4),
		game.WithRedUnit(1, 9, 12, game.WeaponSling, 20),
		game.WithRedUnit(2, 9, 16, game.WeaponSling, 20),
		game.WithRedUnit(3, 7, 13, game.WeaponGun, 6),
	}
	for i := 0; i < 8; i++ {
		opts = append(opts, game.WithBlueUnit(10+i, 22+i%2, 10+i, game.WeaponBow, 10))
	}
	return append(opts,
		game.WithRedSquad(game.FormationBox, 0, 1, 2, 3),
		game.WithBlueSquad(game.FormationWedge, 10, 11, 12, 13, 14, 15, 16, 17),
	)
}

// scenarioCrossed: mixed weapons on both sides, squads spread wide enough
// to trip the cohesion check.
func scenarioCrossed(seed int64) []game.SimOption {
	opts := []game.SimOption{game.WithMapSize(64, 40), game.WithSeed(seed), game.WithAutoRegroup(true)}
	kinds := []game.WeaponKind{game.WeaponBow, game.WeaponJavelin, game.WeaponCrossbow, game.WeaponSling, game.WeaponGun}
	for i, k := range kinds {
		opts = append(opts,
			game.WithRedUnit(i, 4+i*3, 6+i*5, k, 10),
			game.WithBlueUnit(10+i, 20+i*2, 30-i*5, k, 10),
		)
	}
	return append(opts,
		game.WithRedSquad(game.FormationSkirmish, 0, 1, 2, 3, 4),
		game.WithBlueSquad(game.FormationFlank, 10, 11, 12, 13, 14),
	)
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenarioName string
	var configDir string
	var copyOut bool
	var showMetrics bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 1800, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioName, "scenario", "volley", "scenario name")
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the clipboard")
	flag.BoolVar(&showMetrics, "metrics", false, "print otel counter totals")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick projectile movement")
	flag.Parse()

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
	}
	log := logging.New(os.Stderr, config.GetString("logLevel"))
	if config.GetBool("logJSON") {
		log = logging.NewJSON(os.Stderr, config.GetString("logLevel"))
	}

	if runs <= 0 {
		log.Error().Int("runs", runs).Msg("-runs must be > 0")
		os.Exit(2)
	}
	if ticks <= 0 {
		log.Error().Int("ticks", ticks).Msg("-ticks must be > 0")
		os.Exit(2)
	}
	build, ok := scenarios[scenarioName]
	if !ok {
		log.Error().Str("scenario", scenarioName).Str("supported", scenarioNames()).Msg("unsupported scenario")
		os.Exit(2)
	}

	var reader *sdkmetric.ManualReader
	if showMetrics {
		reader = sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		otel.SetMeterProvider(provider)
		defer func() { _ = provider.Shutdown(context.Background()) }()
	}

	tuning := config.Tuning()
	var out strings.Builder
	w := io.MultiWriter(os.Stdout, &out)

	fmt.Fprintf(w, "=== Headless Combat Report ===\n")
	fmt.Fprintf(w, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenarioName, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs := runScenario(build, i+1, seed, ticks, tuning, verbose, log)
		all = append(all, rs)
		printRun(w, rs)
	}
	printAggregate(w, all)

	if reader != nil {
		if err := printMetrics(w, reader); err != nil {
			log.Warn().Err(err).Msg("collect metrics")
		}
	}

	if copyOut {
		if err := clipboard.WriteAll(out.String()); err != nil {
			log.Warn().Err(err).Msg("copy to clipboard failed")
		} else {
			log.Info().Int("bytes", out.Len()).Msg("report copied to clipboard")
		}
	}
}

func runScenario(build scenario, runIndex int, seed int64, ticks int, tuning game.Tuning, verbose bool, log zerolog.Logger) runStats {
	opts := append(build(seed),
		game.WithTuning(tuning),
		game.WithVerbose(verbose),
		game.WithLogger(log.With().Int("run", runIndex).Logger()),
	)
	ts := game.NewTestSim(opts...)
	ts.RunUntil(func(ts *game.TestSim) bool {
		return ts.World.CountAlive(game.TeamRed) == 0 || ts.World.CountAlive(game.TeamBlue) == 0
	}, ticks)

	rep := game.BuildReport(ts)
	rs := runStats{
		runIndex:      runIndex,
		seed:          seed,
		redTotal:      rep.RedTotal,
		blueTotal:     rep.BlueTotal,
		redSurvivors:  rep.RedAlive,
		blueSurvivors: rep.BlueAlive,
		report:        rep,
	}
	if verbose {
		rs.eventLog = ts.SimLog.Format() + ts.SimLog.Summary(ts.World)
	}
	return rs
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprint(w, rs.report.Format())
	stalemate, reason := detectStalemate(rs)
	fmt.Fprintf(w, "  stalemate=%t reason=%s\n", stalemate, reason)
	if rs.eventLog != "" {
		fmt.Fprint(w, rs.eventLog)
	}
	fmt.Fprintln(w)
}

// detectStalemate flags runs where both sides kept most of their people
// and the exchange of fire achieved little.
func detectStalemate(rs runStats) (bool, string) {
	if rs.redTotal == 0 || rs.blueTotal == 0 {
		return false, "missing_side"
	}
	redSurv := float64(rs.redSurvivors) / float64(rs.redTotal)
	blueSurv := float64(rs.blueSurvivors) / float64(rs.blueTotal)
	if redSurv < 0.5 || blueSurv < 0.5 {
		return false, "decisive_attrition"
	}
	if rs.report.Outcome.RedSquadsLost > 0 || rs.report.Outcome.BlueSquadsLost > 0 {
		return false, "squad_destroyed"
	}
	if rs.report.ShotsFired == 0 {
		return true, "high_mutual_survival_no_fire"
	}
	if rs.report.HitRate() < 0.25 {
		return true, "high_mutual_survival_low_hit_rate"
	}
	return true, "high_mutual_survival"
}

// teamSurvivalCounts sums starting and surviving headcounts across runs.
func teamSurvivalCounts(all []runStats) (redTotal, blueTotal, redSurvivors, blueSurvivors int) {
	for _, rs := range all {
		redTotal += rs.redTotal
		blueTotal += rs.blueTotal
		redSurvivors += rs.redSurvivors
		blueSurvivors += rs.blueSurvivors
	}
	return redTotal, blueTotal, redSurvivors, blueSurvivors
}

func printAggregate(w io.Writer, all []runStats) {
	totalShots := 0
	totalHits := 0
	totalExplosions := 0
	totalBlocked := 0
	totalRegroups := 0
	stalemates := 0
	outcomes := map[string]int{}
	deathTicks := make([]int, 0, len(all))
	shotTicks := make([]int, 0, len(all))

	for _, rs := range all {
		r := rs.report
		totalShots += r.ShotsFired
		totalHits += r.Hits
		totalExplosions += r.Explosions
		totalBlocked += r.Blocked
		totalRegroups += r.Regroups
		outcomes[r.Outcome.Outcome.String()]++
		if r.FirstDeathTick >= 0 {
			deathTicks = append(deathTicks, r.FirstDeathTick)
		}
		if r.FirstShotTick >= 0 {
			shotTicks = append(shotTicks, r.FirstShotTick)
		}
		if ok, _ := detectStalemate(rs); ok {
			stalemates++
		}
	}

	redTotal, blueTotal, redSurv, blueSurv := teamSurvivalCounts(all)

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d stalemates=%d outcomes=%s\n", len(all), stalemates, joinCounts(outcomes))
	fmt.Fprintf(w, "avg_per_run: shots=%.1f hits=%.1f explosions=%.1f blocked=%.1f regroups=%.1f\n",
		avg(totalShots, len(all)), avg(totalHits, len(all)), avg(totalExplosions, len(all)),
		avg(totalBlocked, len(all)), avg(totalRegroups, len(all)))
	fmt.Fprintf(w, "phase_marker_avg_ticks: first_shot=%s first_death=%s\n",
		avgTickString(shotTicks), avgTickString(deathTicks))
	fmt.Fprintf(w, "survival: red=%d/%d blue=%d/%d\n", redSurv, redTotal, blueSurv, blueTotal)
}

// printMetrics collects the otel counters and prints their totals summed
// over attributes.
func printMetrics(w io.Writer, reader *sdkmetric.ManualReader) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		return err
	}
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	names := make([]string, 0, len(totals))
	for k := range totals {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\n=== Metrics ===")
	for _, n := range names {
		fmt.Fprintf(w, "  %-28s %d\n", n, totals[n])
	}
	return nil
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return strings.Join(parts, ",")
}
