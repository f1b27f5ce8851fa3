package game

import "math"

// WeaponKind is the closed set of ranged weapon classes.
type WeaponKind int

const (
	WeaponBow WeaponKind = iota
	WeaponCrossbow
	WeaponSling
	WeaponJavelin
	WeaponGun
	WeaponCannon
	weaponKindCount // sentinel
)

// AllWeaponKinds lists every weapon class in declaration order.
func AllWeaponKinds() []WeaponKind {
	out := make([]WeaponKind, 0, weaponKindCount)
	for k := WeaponKind(0); k < weaponKindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k WeaponKind) String() string {
	switch k {
	case WeaponBow:
		return "bow"
	case WeaponCrossbow:
		return "crossbow"
	case WeaponSling:
		return "sling"
	case WeaponJavelin:
		return "javelin"
	case WeaponGun:
		return "gun"
	case WeaponCannon:
		return "cannon"
	default:
		return "unknown"
	}
}

// AmmoType names an inventory item consumed by a weapon.
type AmmoType string

// RangedWeapon holds the stats of an equipped ranged weapon.
type RangedWeapon struct {
	Kind            WeaponKind
	Damage          int
	Range           float64 // cells
	Accuracy        float64 // 0..1
	ReloadSeconds   float64
	ProjectileSpeed float64 // velocity scale applied to the unit aim vector
	Ammo            AmmoType
	Projectile      ProjectileKind
}

// weaponTable is the built-in stat block per weapon class. Tuning may
// override individual entries.
var weaponTable = map[WeaponKind]RangedWeapon{
	WeaponBow:      {Kind: WeaponBow, Damage: 8, Range: 8, Accuracy: 0.75, ReloadSeconds: 1.0, ProjectileSpeed: 10, Ammo: "arrow", Projectile: ProjectileArrow},
	WeaponCrossbow: {Kind: WeaponCrossbow, Damage: 10, Range: 10, Accuracy: 0.85, ReloadSeconds: 2.0, ProjectileSpeed: 10, Ammo: "bolt", Projectile: ProjectileBolt},
	WeaponSling:    {Kind: WeaponSling, Damage: 4, Range: 6, Accuracy: 0.6, ReloadSeconds: 0.8, ProjectileSpeed: 8, Ammo: "stone", Projectile: ProjectileStandard},
	WeaponJavelin:  {Kind: WeaponJavelin, Damage: 12, Range: 5, Accuracy: 0.7, ReloadSeconds: 1.5, ProjectileSpeed: 7, Ammo: "javelin", Projectile: ProjectileStandard},
	WeaponGun:      {Kind: WeaponGun, Damage: 15, Range: 12, Accuracy: 0.8, ReloadSeconds: 2.5, ProjectileSpeed: 10, Ammo: "bullet", Projectile: ProjectileBullet},
	WeaponCannon:   {Kind: WeaponCannon, Damage: 25, Range: 14, Accuracy: 0.5, ReloadSeconds: 6.0, ProjectileSpeed: 10, Ammo: "cannonball", Projectile: ProjectileCannonball},
}

// DefaultWeapon returns the built-in stat block for a weapon class.
func DefaultWeapon(k WeaponKind) RangedWeapon {
	return weaponTable[k]
}

// InRange reports whether a target at dist cells is reachable.
func (w RangedWeapon) InRange(dist float64) bool {
	return dist <= w.Range
}

// HitChance is the probability that a shot lands where it was aimed.
// Long shots lose up to half the base accuracy; each skill level adds 5%.
// weather is a multiplier supplied by the environment (1.0 = clear).
func HitChance(baseAccuracy, dist, maxRange float64, skill int, weather float64) float64 {
	distanceMul := 1.0
	if maxRange > 0 {
		distanceMul = 1.0 - math.Min(dist/maxRange, 1.0)*0.5
	}
	skillMul := 1.0 + float64(skill)*0.05
	return clamp01(baseAccuracy * distanceMul * skillMul * weather)
}
