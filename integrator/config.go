package integrator

import (
	"math"
)

// Config describes a single reentry run. All quantities are SI. Velocity is
// measured positive toward the ground: altitude decreases by Velocity *
// TimeStep each step.
type Config struct {
	InitialAltitude float64 // m
	InitialVelocity float64 // m/s
	TimeStep        float64 // s
	MaxSteps        int     // upper bound on recorded samples

	SeaLevelDensity float64 // kg/m^3
	ScaleHeight     float64 // m
	Gravity         float64 // m/s^2

	DragCoefficient float64
	FrontalArea     float64 // m^2
	Mass            float64 // kg
}

// Validate returns a *ConfigError wrapping ErrInvalidConfig for the first
// field that cannot be integrated.
func (cfg *Config) Validate() error {
	switch {
	case !(cfg.TimeStep > 0):
		return &ConfigError{"TimeStep", cfg.TimeStep, "must be positive"}
	case cfg.MaxSteps < 1:
		return &ConfigError{"MaxSteps", float64(cfg.MaxSteps), "must be at least 1"}
	case !(cfg.Mass > 0):
		return &ConfigError{"Mass", cfg.Mass, "must be positive"}
	case !(cfg.ScaleHeight > 0):
		return &ConfigError{"ScaleHeight", cfg.ScaleHeight, "must be positive"}
	case cfg.InitialAltitude < 0:
		return &ConfigError{"InitialAltitude", cfg.InitialAltitude, "must not be negative"}
	}

	fields := []struct {
		name string
		val  float64
	}{
		{"InitialAltitude", cfg.InitialAltitude},
		{"InitialVelocity", cfg.InitialVelocity},
		{"TimeStep", cfg.TimeStep},
		{"SeaLevelDensity", cfg.SeaLevelDensity},
		{"ScaleHeight", cfg.ScaleHeight},
		{"Gravity", cfg.Gravity},
		{"DragCoefficient", cfg.DragCoefficient},
		{"FrontalArea", cfg.FrontalArea},
		{"Mass", cfg.Mass},
	}
	for _, f := range fields {
		if !finite(f.val) {
			return &ConfigError{f.name, f.val, "must be finite"}
		}
	}

	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
