package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Garsondee/tactical-core/internal/game"
)

// FileName is the config file looked up in the config directory.
const FileName = "tactical.cfg.json"

// Load sets default values and reads FileName from configDir. A missing
// file is not an error; the defaults stay in effect.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	d := game.DefaultTuning()

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logJSON", false)

	viper.SetDefault("sim.tickSeconds", d.TickSeconds)
	viper.SetDefault("sim.moveScale", d.MoveScale)
	viper.SetDefault("sim.weather", d.Weather)

	viper.SetDefault("cohesion.regroupDistance", d.RegroupDistance)

	viper.SetDefault("squad.disbandEmpty", d.DisbandEmptySquads)
	viper.SetDefault("squad.rankWidth", d.RankWidth)

	viper.SetDefault("projectile.pierceRehit", d.PierceRehit)
	viper.SetDefault("combat.accuracyRolls", d.AccuracyRolls)

	for _, k := range game.AllWeaponKinds() {
		w := d.Weapon(k)
		prefix := "weapons." + k.String() + "."
		viper.SetDefault(prefix+"damage", w.Damage)
		viper.SetDefault(prefix+"range", w.Range)
		viper.SetDefault(prefix+"accuracy", w.Accuracy)
		viper.SetDefault(prefix+"reload", w.ReloadSeconds)
		viper.SetDefault(prefix+"speed", w.ProjectileSpeed)
		viper.SetDefault(prefix+"ammo", string(w.Ammo))
		viper.SetDefault(prefix+"projectile", w.Projectile.String())
	}
}

// Tuning builds the combat tuning from the loaded values. Unknown projectile
// names keep the built-in projectile of the weapon.
func Tuning() game.Tuning {
	t := game.DefaultTuning()
	t.TickSeconds = viper.GetFloat64("sim.tickSeconds")
	t.MoveScale = viper.GetFloat64("sim.moveScale")
	t.Weather = viper.GetFloat64("sim.weather")
	t.RegroupDistance = viper.GetFloat64("cohesion.regroupDistance")
	t.DisbandEmptySquads = viper.GetBool("squad.disbandEmpty")
	t.RankWidth = viper.GetInt("squad.rankWidth")
	t.PierceRehit = viper.GetBool("projectile.pierceRehit")
	t.AccuracyRolls = viper.GetBool("combat.accuracyRolls")

	for _, k := range game.AllWeaponKinds() {
		w := t.Weapon(k)
		prefix := "weapons." + k.String() + "."
		w.Damage = viper.GetInt(prefix + "damage")
		w.Range = viper.GetFloat64(prefix + "range")
		w.Accuracy = viper.GetFloat64(prefix + "accuracy")
		w.ReloadSeconds = viper.GetFloat64(prefix + "reload")
		w.ProjectileSpeed = viper.GetFloat64(prefix + "speed")
		if ammo := viper.GetString(prefix + "ammo"); ammo != "" {
			w.Ammo = game.AmmoType(ammo)
		}
		if pk, ok := game.ParseProjectileKind(viper.GetString(prefix + "projectile")); ok {
			w.Projectile = pk
		}
		t.Weapons[k] = w
	}
	return t
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
