package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/Garsondee/tactical-core/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// combatMetrics are the OTel counters the combat core publishes. They come
// from the global provider and are no-ops unless one is installed.
type combatMetrics struct {
	shotsFired  metric.Int64Counter
	expired     metric.Int64Counter
	blocked     metric.Int64Counter
	hits        metric.Int64Counter
	explosions  metric.Int64Counter
	damageDealt metric.Int64Counter
	regroups    metric.Int64Counter
	pruned      metric.Int64Counter
	deaths      metric.Int64Counter
}

func newCombatMetrics(m metric.Meter) (*combatMetrics, error) {
	cm := &combatMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&cm.shotsFired, "combat.shots.fired", "Projectiles spawned by ranged attackers"},
		{&cm.expired, "combat.projectiles.expired", "Projectiles removed at end of lifetime"},
		{&cm.blocked, "combat.projectiles.blocked", "Projectiles destroyed by wall tiles"},
		{&cm.hits, "combat.hits", "Direct projectile hits on combatants"},
		{&cm.explosions, "combat.explosions", "Explosive projectile detonations"},
		{&cm.damageDealt, "combat.damage.dealt", "Total health removed from combatants"},
		{&cm.regroups, "squad.regroup.flagged", "Cohesion sweeps that flagged a regroup"},
		{&cm.pruned, "squad.members.pruned", "Dead members removed from squads"},
		{&cm.deaths, "combat.deaths", "Combatants despawned at zero health"},
	}
	for _, c := range counters {
		ctr, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = ctr
	}
	return cm, nil
}

// noopCombatMetrics never fails; used when the global meter rejects an
// instrument.
func noopCombatMetrics() *combatMetrics {
	cm, _ := newCombatMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return cm
}

func (cm *combatMetrics) add(ctr metric.Int64Counter, n int64, kv ...attribute.KeyValue) {
	if n == 0 {
		return
	}
	ctr.Add(context.Background(), n, metric.WithAttributes(kv...))
}
