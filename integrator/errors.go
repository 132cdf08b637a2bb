package integrator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a Config cannot be integrated.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNumericalDivergence is returned when altitude, velocity or heat flux
	// stops being finite partway through a run.
	ErrNumericalDivergence = errors.New("numerical divergence")
)

// ConfigError names the offending Config field. It unwraps to
// ErrInvalidConfig.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %g", ErrInvalidConfig, e.Field, e.Reason, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// DivergenceError records the first non-finite sample. It unwraps to
// ErrNumericalDivergence.
type DivergenceError struct {
	Step     int
	Altitude float64
	Velocity float64
	HeatFlux float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf(
		"%s: step %d produced altitude %g, velocity %g, heat flux %g",
		ErrNumericalDivergence, e.Step, e.Altitude, e.Velocity, e.HeatFlux,
	)
}

func (e *DivergenceError) Unwrap() error { return ErrNumericalDivergence }
