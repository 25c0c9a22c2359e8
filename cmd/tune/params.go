// Package main provides CMA-ES tuning for the flame renderer's merge
// and spawn parameters.
package main

import (
	"github.com/pthm-cable/pyre/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Clustering (budget and multipliers locked - they define the contract)
			{Name: "base_distance", Path: "cluster.base_distance", Min: 12, Max: 48, Default: 26},
			{Name: "cohesion_factor", Path: "cluster.cohesion_factor", Min: 0.5, Max: 1.4, Default: 0.9},
			{Name: "height_scale_floor", Path: "cluster.height_scale_floor", Min: 0.05, Max: 0.5, Default: 0.12},
			{Name: "height_scale_gain", Path: "cluster.height_scale_gain", Min: 0.5, Max: 3.5, Default: 2.0},
			{Name: "bottom_bias_gain", Path: "cluster.bottom_bias_gain", Min: 0.0, Max: 1.5, Default: 0.6},
			// Spawn admission
			{Name: "spawn_interval", Path: "spawn.interval", Min: 0.02, Max: 0.3, Default: 0.08},
			{Name: "spawn_interval_max", Path: "spawn.interval_max", Min: 0.1, Max: 1.5, Default: 0.45},
			{Name: "pressure_start", Path: "spawn.pressure_start", Min: 0.3, Max: 0.9, Default: 0.7},
			// Particle lifetime feeds steady-state population
			{Name: "life_min", Path: "particle.life_min", Min: 0.5, Max: 2.5, Default: 1.6},
			{Name: "life_max", Path: "particle.life_max", Min: 1.5, Max: 5.0, Default: 3.4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	v := pv.Clamp(values)

	cfg.Cluster.BaseDistance = v[0]
	cfg.Cluster.CohesionFactor = v[1]
	cfg.Cluster.HeightScaleFloor = v[2]
	cfg.Cluster.HeightScaleGain = v[3]
	cfg.Cluster.BottomBiasGain = v[4]

	cfg.Spawn.Interval = v[5]
	cfg.Spawn.IntervalMax = v[6]
	cfg.Spawn.PressureStart = v[7]

	cfg.Particle.LifeMin = v[8]
	cfg.Particle.LifeMax = v[9]
	if cfg.Particle.LifeMax < cfg.Particle.LifeMin {
		cfg.Particle.LifeMax = cfg.Particle.LifeMin
	}
}
