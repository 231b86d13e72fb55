// Package config resolves the enumerated configuration of spec.md §6
// (max_time, max_cost, unit_costs, sampling_time, effort_weight,
// eager_layers, visualize, verbose, postprocess) from a layered
// file/env/flag source, keeping the teacher's "reject unknown keys,
// deterministic precedence" discipline
// (internal/projectintegration/engine/config) while widening it past a
// single JSON file via github.com/spf13/viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is the sentinel for any configuration rejected at
// load time: an unknown key, or a value outside its field's allowed shape.
var ErrInvalidConfig = errors.New("invalid configuration")

// allowedKeys is the exhaustive set spec.md §6 enumerates; anything else
// present in the resolved viper instance is rejected, mirroring the
// teacher's explicit allow-list instead of silently ignoring typos.
var allowedKeys = map[string]bool{
	"max_time": true, "max_cost": true, "unit_costs": true,
	"sampling_time": true, "effort_weight": true, "eager_layers": true,
	"visualize": true, "verbose": true, "postprocess": true,
}

// UnitCosts is the three-valued unit_costs setting (§6: "bool | auto").
type UnitCosts string

const (
	UnitCostsTrue  UnitCosts = "true"
	UnitCostsFalse UnitCosts = "false"
	UnitCostsAuto  UnitCosts = "auto"
)

// Configuration is the fully-resolved, validated configuration for one
// solve.
type Configuration struct {
	MaxTime      time.Duration
	MaxCost      float64
	UnitCosts    UnitCosts
	SamplingTime time.Duration
	// EffortWeight is nil when absent, matching §6's "number or absent".
	EffortWeight *float64
	EagerLayers  int
	Visualize    bool
	Verbose      bool
	Postprocess  bool
}

// Defaults returns the configuration used when nothing overrides it: an
// unbounded time/cost budget, a 10s greedy sampling window, one eager
// layer, unit_costs left to the driver to decide ("auto").
func Defaults() Configuration {
	return Configuration{
		MaxTime:      -1,
		MaxCost:      -1,
		UnitCosts:    UnitCostsAuto,
		SamplingTime: 10 * time.Second,
		EagerLayers:  1,
	}
}

// New builds a viper instance layering, in precedence order: explicit
// flags/env (bound by the caller, e.g. cmd/pddlstream) over the file at
// configPath (if non-empty) over Defaults(). It does not itself read
// environment variables beyond the PDDLSTREAM_ prefix, keeping the
// teacher's "no ambient global locations" discipline for anything outside
// that namespace.
func New(configPath string) *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("max_time", d.MaxTime.String())
	v.SetDefault("max_cost", d.MaxCost)
	v.SetDefault("unit_costs", string(d.UnitCosts))
	v.SetDefault("sampling_time", d.SamplingTime.String())
	v.SetDefault("eager_layers", d.EagerLayers)
	v.SetDefault("visualize", d.Visualize)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("postprocess", d.Postprocess)

	v.SetEnvPrefix("PDDLSTREAM")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
	}
	return v
}

// Load reads configPath (if set on v) and resolves it into a validated
// Configuration, rejecting any key outside allowedKeys.
func Load(v *viper.Viper) (Configuration, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	for _, key := range v.AllKeys() {
		if !allowedKeys[key] {
			return Configuration{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
		}
	}

	cfg := Defaults()
	var err error
	if cfg.MaxTime, err = parseSignedDuration(v.GetString("max_time")); err != nil {
		return Configuration{}, fmt.Errorf("%w: max_time: %v", ErrInvalidConfig, err)
	}
	cfg.MaxCost = v.GetFloat64("max_cost")

	switch UnitCosts(v.GetString("unit_costs")) {
	case UnitCostsTrue, UnitCostsFalse, UnitCostsAuto:
		cfg.UnitCosts = UnitCosts(v.GetString("unit_costs"))
	default:
		return Configuration{}, fmt.Errorf("%w: unit_costs must be true, false or auto", ErrInvalidConfig)
	}

	if cfg.SamplingTime, err = parseSignedDuration(v.GetString("sampling_time")); err != nil {
		return Configuration{}, fmt.Errorf("%w: sampling_time: %v", ErrInvalidConfig, err)
	}
	if v.IsSet("effort_weight") {
		w := v.GetFloat64("effort_weight")
		cfg.EffortWeight = &w
	}
	cfg.EagerLayers = v.GetInt("eager_layers")
	if cfg.EagerLayers < 0 {
		return Configuration{}, fmt.Errorf("%w: eager_layers must be ≥ 0", ErrInvalidConfig)
	}
	cfg.Visualize = v.GetBool("visualize")
	cfg.Verbose = v.GetBool("verbose")
	cfg.Postprocess = v.GetBool("postprocess")
	return cfg, nil
}

// parseSignedDuration parses a duration string, accepting the bare "-1"
// (no unit) as -1ns rather than a parse error; other negative values need
// a unit (e.g. "-5s"). A negative result means "unbounded", matching
// max_time/max_cost's "unbounded" convention represented as a negative
// sentinel throughout this module.
func parseSignedDuration(s string) (time.Duration, error) {
	if s == "-1" {
		return -1, nil
	}
	return time.ParseDuration(s)
}
