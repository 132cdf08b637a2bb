/*package analyze turns a reentry trajectory into plasma-regime heat flux
series, the magnetically cooled comparison series, cumulative energy
deposition, and the fraction of tile capacity used.
*/
package analyze

import (
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

// Result holds index-aligned series restricted to the plasma regime. All
// slices have the same length and are never modified after Analyze returns.
type Result struct {
	// SourceIndex is the trajectory index each entry was taken from.
	SourceIndex []int

	Altitude       []float64 // m
	RawHeatFlux    []float64 // W/m^2
	CooledHeatFlux []float64 // W/m^2

	CumulativeEnergyNormal []float64 // J/m^2
	CumulativeEnergyCooled []float64 // J/m^2

	PercentCapacityNormal []float64
	PercentCapacityCooled []float64
}

func (r *Result) Len() int { return len(r.Altitude) }

// Analyze filters traj to the plasma regime and accumulates energy
// deposition. Sample 0 is always excluded. A trajectory with fewer than two
// samples is rejected with ErrInvalidParameters; a trajectory that never
// reaches the threshold gives an empty Result.
func Analyze(traj *integrator.Trajectory, p Params) (*Result, error) {
	n := 0
	if traj != nil {
		n = traj.Len()
	}
	if n < 2 {
		return nil, &ParamError{"Trajectory", float64(n), "must have at least 2 samples"}
	}
	return AnalyzeSeries(traj.Altitudes(), traj.HeatFluxes(), p)
}

// AnalyzeSeries is Analyze over bare altitude and heat flux columns, as
// read back from a trajectory table.
func AnalyzeSeries(altitudes, fluxes []float64, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(altitudes) != len(fluxes) {
		return nil, &ParamError{
			"Trajectory", float64(len(fluxes)),
			"heat flux column must match altitude column length",
		}
	}
	if len(fluxes) < 2 {
		return nil, &ParamError{"Trajectory", float64(len(fluxes)), "must have at least 2 samples"}
	}

	r := &Result{}
	r.SourceIndex = []int{}
	r.Altitude = []float64{}
	r.RawHeatFlux = []float64{}
	for i := 1; i < len(fluxes); i++ {
		if fluxes[i] >= p.PlasmaThreshold {
			r.SourceIndex = append(r.SourceIndex, i)
			r.Altitude = append(r.Altitude, altitudes[i])
			r.RawHeatFlux = append(r.RawHeatFlux, fluxes[i])
		}
	}

	n := len(r.RawHeatFlux)
	r.CooledHeatFlux = make([]float64, n)
	r.CumulativeEnergyNormal = make([]float64, n)
	r.CumulativeEnergyCooled = make([]float64, n)
	r.PercentCapacityNormal = make([]float64, n)
	r.PercentCapacityCooled = make([]float64, n)

	// Gaps left by filtered-out samples are skipped rather than integrated
	// over: each selected sample contributes exactly flux * TimeStep.
	sumNormal, sumCooled := 0.0, 0.0
	for i, q := range r.RawHeatFlux {
		cooled := p.CoolingFactor * q
		sumNormal += float64(q * p.TimeStep)
		sumCooled += float64(cooled * p.TimeStep)

		r.CooledHeatFlux[i] = cooled
		r.CumulativeEnergyNormal[i] = sumNormal
		r.CumulativeEnergyCooled[i] = sumCooled
		r.PercentCapacityNormal[i] = sumNormal / p.TileCapacity * 100
		r.PercentCapacityCooled[i] = sumCooled / p.TileCapacity * 100
	}

	return r, nil
}
