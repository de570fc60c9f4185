// Package config loads the host-recognized configuration options via
// viper: viper does the file discovery and decoding, plain structs carry
// the typed result.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Options is every configuration key the engine recognizes.
type Options struct {
	AutoVisibilityEnabled bool `mapstructure:"autoVisibilityEnabled"`
	IgnoreAllies          bool `mapstructure:"ignoreAllies"`
	HideFoundryHiddenTokens bool `mapstructure:"hideFoundryHiddenTokens"`
	DefaultEncounterFilter  bool `mapstructure:"defaultEncounterFilter"`

	LimitSeekRangeInCombat    bool `mapstructure:"limitSeekRangeInCombat"`
	LimitSeekRangeOutOfCombat bool `mapstructure:"limitSeekRangeOutOfCombat"`
	CustomSeekDistance          int `mapstructure:"customSeekDistance"`
	CustomSeekDistanceOutOfCombat int `mapstructure:"customSeekDistanceOutOfCombat"`

	WallStealthDC int `mapstructure:"wallStealthDC"`
	LootStealthDC int `mapstructure:"lootStealthDC"`
}

// Defaults returns the option set the engine falls back to absent any
// config file; every flag defaults to its most conservative setting.
func Defaults() Options {
	return Options{
		AutoVisibilityEnabled:         true,
		IgnoreAllies:                  false,
		HideFoundryHiddenTokens:       true,
		DefaultEncounterFilter:        false,
		LimitSeekRangeInCombat:        true,
		LimitSeekRangeOutOfCombat:     false,
		CustomSeekDistance:            0,
		CustomSeekDistanceOutOfCombat: 0,
		WallStealthDC:                 15,
		LootStealthDC:                 15,
	}
}

// Load reads a YAML config file at path into Options, seeded with
// Defaults() so a partial file only overrides the keys it sets.
func Load(path string) (Options, error) {
	opts := Defaults()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return opts, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := vp.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return opts, nil
}

// SeekDistanceFeet returns the effective Seek distance cap for the given
// combat state, or 0 (no cap) when the matching limit flag is off.
func (o Options) SeekDistanceFeet(inCombat bool) int {
	if inCombat {
		if !o.LimitSeekRangeInCombat {
			return 0
		}
		if o.CustomSeekDistance > 0 {
			return o.CustomSeekDistance
		}
		return 30
	}
	if !o.LimitSeekRangeOutOfCombat {
		return 0
	}
	if o.CustomSeekDistanceOutOfCombat > 0 {
		return o.CustomSeekDistanceOutOfCombat
	}
	return 60
}
