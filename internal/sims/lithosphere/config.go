package lithosphere

import "strconv"

// Params holds the tunable knobs of the tectonic simulation.
type Params struct {
	SeaLevel       float64 // fraction of the surface under water at genesis
	PlateCount     int
	ErosionPeriod  int     // ticks between erosion passes, 0 disables
	FoldingRatio   float64 // share of colliding crust folded onto the overriding plate
	AggrOverlapAbs int     // collision count that forces continent aggregation
	AggrOverlapRel float64 // collision/area ratio that forces aggregation
	CycleCount     int     // number of times the plate system is rebuilt
	RestartSpeed   float64 // mean plate speed below which a cycle ends
}

// Config controls the lithosphere simulation dimensions and parameters.
type Config struct {
	Width  int
	Height int

	Seed int64

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  256,
		Height: 256,
		Seed:   1337,
		Params: Params{
			SeaLevel:       0.65,
			PlateCount:     10,
			ErosionPeriod:  60,
			FoldingRatio:   0.02,
			AggrOverlapAbs: 5000,
			AggrOverlapRel: 0.33,
			CycleCount:     2,
			RestartSpeed:   0.25,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["sea_level"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.SeaLevel = parsed
		}
	}
	if v, ok := cfg["plates"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Params.PlateCount = parsed
		}
	}
	if v, ok := cfg["erosion_period"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.ErosionPeriod = parsed
		}
	}
	if v, ok := cfg["folding_ratio"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.FoldingRatio = parsed
		}
	}
	if v, ok := cfg["aggr_overlap_abs"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.AggrOverlapAbs = parsed
		}
	}
	if v, ok := cfg["aggr_overlap_rel"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.AggrOverlapRel = parsed
		}
	}
	if v, ok := cfg["cycles"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.CycleCount = parsed
		}
	}
	if v, ok := cfg["restart_speed"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.RestartSpeed = parsed
		}
	}
	return c
}
