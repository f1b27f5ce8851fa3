package game

// Tuning holds every adjustable constant of the combat core. DefaultTuning
// reproduces the reference behaviour; internal/config builds one from a
// config file.
type Tuning struct {
	// TickSeconds is the sim time advanced by one Step.
	TickSeconds float64
	// MoveScale converts velocity × seconds into grid cells.
	MoveScale float64

	// RegroupDistance is the max member spread from the squad centre before
	// the squad is flagged for regroup. The comparison is exclusive.
	RegroupDistance float64
	// RankWidth is how many members share a rank in a new squad.
	RankWidth int
	// DisbandEmptySquads removes squads whose last member died.
	DisbandEmptySquads bool

	// PierceRehit lets a piercing projectile damage the same entity on
	// consecutive ticks. When false each entity is hit at most once.
	PierceRehit bool
	// AccuracyRolls enables the hit-chance roll on every shot.
	AccuracyRolls bool
	// Weather scales accuracy (1.0 = clear).
	Weather float64

	Weapons map[WeaponKind]RangedWeapon
}

const (
	defaultTickSeconds     = 1.0 / 60.0
	defaultMoveScale       = 20.0
	defaultRegroupDistance = 10.0
	defaultRankWidth       = 4
)

// DefaultTuning returns the reference tuning.
func DefaultTuning() Tuning {
	weapons := make(map[WeaponKind]RangedWeapon, len(weaponTable))
	for k, w := range weaponTable {
		weapons[k] = w
	}
	return Tuning{
		TickSeconds:     defaultTickSeconds,
		MoveScale:       defaultMoveScale,
		RegroupDistance: defaultRegroupDistance,
		RankWidth:       defaultRankWidth,
		PierceRehit:     true,
		Weather:         1.0,
		Weapons:         weapons,
	}
}

// Weapon returns the tuned stat block for a weapon class, falling back to
// the built-in table.
func (t Tuning) Weapon(k WeaponKind) RangedWeapon {
	if w, ok := t.Weapons[k]; ok {
		return w
	}
	return DefaultWeapon(k)
}

// normalized fills zero fields with reference defaults.
func (t Tuning) normalized() Tuning {
	d := DefaultTuning()
	if t.TickSeconds <= 0 {
		t.TickSeconds = d.TickSeconds
	}
	if t.MoveScale <= 0 {
		t.MoveScale = d.MoveScale
	}
	if t.RegroupDistance <= 0 {
		t.RegroupDistance = d.RegroupDistance
	}
	if t.RankWidth <= 0 {
		t.RankWidth = d.RankWidth
	}
	if t.Weather <= 0 {
		t.Weather = d.Weather
	}
	if t.Weapons == nil {
		t.Weapons = d.Weapons
	}
	return t
}
