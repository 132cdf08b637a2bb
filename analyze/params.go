package analyze

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned when analysis parameters, or the series
// they are applied to, cannot be analyzed.
var ErrInvalidParameters = errors.New("invalid parameters")

// ParamError names the offending parameter. It unwraps to
// ErrInvalidParameters.
type ParamError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %g", ErrInvalidParameters, e.Param, e.Reason, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameters }

// Params controls plasma filtering and energy accounting.
type Params struct {
	// PlasmaThreshold is the heat flux (W/m^2) at or above which a sample
	// is counted as inside the plasma regime. A negative threshold can
	// select samples with negative flux, and cumulative energy then stops
	// being non-decreasing.
	PlasmaThreshold float64
	// CoolingFactor scales heat flux in the magnetically cooled series.
	CoolingFactor float64
	// TileCapacity is the energy per unit area (J/m^2) a tile absorbs
	// before failing.
	TileCapacity float64
	// TimeStep is the spacing of the analyzed samples in seconds.
	TimeStep float64
}

func (p *Params) Validate() error {
	switch {
	case math.IsNaN(p.PlasmaThreshold):
		return &ParamError{"PlasmaThreshold", p.PlasmaThreshold, "must be a number"}
	case !(p.CoolingFactor > 0) || p.CoolingFactor > 1:
		return &ParamError{"CoolingFactor", p.CoolingFactor, "must be in (0, 1]"}
	case !(p.TileCapacity > 0) || math.IsInf(p.TileCapacity, 0):
		return &ParamError{"TileCapacity", p.TileCapacity, "must be positive and finite"}
	case !(p.TimeStep > 0) || math.IsInf(p.TimeStep, 0):
		return &ParamError{"TimeStep", p.TimeStep, "must be positive and finite"}
	}
	return nil
}
