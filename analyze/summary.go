package analyze

import (
	"math"

	"github.com/littlejoeyc/starship-reentry-sim/integrator"
	"github.com/littlejoeyc/starship-reentry-sim/math/interpolate"
)

// Summary condenses one run and its analysis into the figures reported at
// the end of a study.
type Summary struct {
	Samples  int
	Impacted bool
	Duration float64 // s

	FinalAltitude float64
	FinalVelocity float64
	MinAltitude   float64

	// Peak flux ignores sample 0. With a single sample it is zero and
	// located at the initial condition.
	PeakHeatFlux         float64
	PeakHeatFluxAltitude float64
	PeakHeatFluxTime     float64

	PlasmaSamples       int
	PlasmaOnsetAltitude float64 // NaN without plasma
	PlasmaEndAltitude   float64 // NaN without plasma

	TotalEnergyNormal  float64
	TotalEnergyCooled  float64
	FinalPercentNormal float64
	FinalPercentCooled float64

	// Altitude at which cumulative deposition first reaches the tile
	// capacity, interpolated between samples. NaN if it never does.
	ExhaustionAltitudeNormal float64
	ExhaustionAltitudeCooled float64
}

func (s *Summary) ExhaustedNormal() bool { return !math.IsNaN(s.ExhaustionAltitudeNormal) }
func (s *Summary) ExhaustedCooled() bool { return !math.IsNaN(s.ExhaustionAltitudeCooled) }

// Summarize builds a Summary. res may be nil when the trajectory was too
// short to analyze.
func Summarize(traj *integrator.Trajectory, res *Result) Summary {
	s := Summary{
		Samples:  traj.Len(),
		Impacted: traj.Impacted(),
		Duration: traj.Duration(),

		FinalAltitude: traj.Final().Altitude,
		FinalVelocity: traj.Final().Velocity,
		MinAltitude:   traj.At(0).Altitude,

		PeakHeatFluxAltitude: traj.At(0).Altitude,

		PlasmaOnsetAltitude:      math.NaN(),
		PlasmaEndAltitude:        math.NaN(),
		ExhaustionAltitudeNormal: math.NaN(),
		ExhaustionAltitudeCooled: math.NaN(),
	}

	peak := -1
	for i := 0; i < traj.Len(); i++ {
		smp := traj.At(i)
		s.MinAltitude = math.Min(s.MinAltitude, smp.Altitude)
		if i > 0 && (peak < 0 || smp.HeatFlux > traj.At(peak).HeatFlux) {
			peak = i
		}
	}
	if peak > 0 {
		s.PeakHeatFlux = traj.At(peak).HeatFlux
		s.PeakHeatFluxAltitude = traj.At(peak).Altitude
		s.PeakHeatFluxTime = traj.Time(peak)
	}

	if res == nil || res.Len() == 0 {
		return s
	}

	n := res.Len()
	s.PlasmaSamples = n
	s.PlasmaOnsetAltitude = res.Altitude[0]
	s.PlasmaEndAltitude = res.Altitude[n-1]
	s.TotalEnergyNormal = res.CumulativeEnergyNormal[n-1]
	s.TotalEnergyCooled = res.CumulativeEnergyCooled[n-1]
	s.FinalPercentNormal = res.PercentCapacityNormal[n-1]
	s.FinalPercentCooled = res.PercentCapacityCooled[n-1]

	alt := interpolate.NewUniformLinear(0, 1, res.Altitude)
	if idx, ok := interpolate.FirstCrossing(res.PercentCapacityNormal, 100); ok {
		s.ExhaustionAltitudeNormal = alt.Eval(idx)
	}
	if idx, ok := interpolate.FirstCrossing(res.PercentCapacityCooled, 100); ok {
		s.ExhaustionAltitudeCooled = alt.Eval(idx)
	}

	return s
}
