package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded combat event.
type SimLogEntry struct {
	Tick     int
	Entity   string  // label e.g. "R0", "B3", or "--" for global events
	Team     string  // "red", "blue", "none" or "--"
	Category string  // squad, cohesion, target, fire, projectile, hit, explosion, death
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] R0   fire      bow              (0,0,0) -> (5,0,0) dmg=8 ammo=0
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Entity, e.Category, e.Key, e.Value)
}

// SimLog collects structured combat events. It is unbounded and
// machine-readable; zerolog output is for humans.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, AddVerbose entries are
// recorded as well.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, entity, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Entity:   entity,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, entity, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, entity, team, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the world state.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.Tick)

	for _, team := range []Team{TeamRed, TeamBlue, TeamNone} {
		if n := w.CountAlive(team); n > 0 {
			fmt.Fprintf(&sb, "Alive %s: %d\n", team, n)
		}
	}

	for _, sq := range w.Squads() {
		fmt.Fprintf(&sb, "%s spread=%.1f regroup=%t [%s]\n",
			sq, sq.Spread, sq.NeedsRegroup, w.SquadRoster(sq.ID))
	}

	fmt.Fprintf(&sb, "Projectiles in flight: %d\n", len(w.Projectiles()))
	fmt.Fprintf(&sb, "Shots=%d hits=%d explosions=%d deaths=%d\n",
		sl.CountCategory("fire", ""), sl.CountCategory("hit", ""),
		sl.CountCategory("explosion", ""), sl.CountCategory("death", ""))
	return sb.String()
}
