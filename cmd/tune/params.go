package main

import (
	"github.com/pthm-cable/ecotope/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the pheromone parameter set.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "evaporation", Path: "pheromone.evaporation", Min: 0.95, Max: 0.999, Default: 0.995,
				get: func(c *config.Config) float64 { return c.Pheromone.Evaporation },
				set: func(c *config.Config, v float64) { c.Pheromone.Evaporation = v },
			},
			{
				Name: "deposit", Path: "pheromone.deposit", Min: 2, Max: 40, Default: 10,
				get: func(c *config.Config) float64 { return c.Pheromone.Deposit },
				set: func(c *config.Config, v float64) { c.Pheromone.Deposit = v },
			},
			{
				Name: "forward_bias", Path: "pheromone.forward_bias", Min: 0, Max: 5, Default: 2,
				get: func(c *config.Config) float64 { return c.Pheromone.ForwardBias },
				set: func(c *config.Config, v float64) { c.Pheromone.ForwardBias = v },
			},
			{
				Name: "pheromone_blend", Path: "ant.pheromone_blend", Min: 0.1, Max: 0.9, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Ant.PheromoneBlend },
				set: func(c *config.Config, v float64) { c.Ant.PheromoneBlend = v },
			},
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
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
