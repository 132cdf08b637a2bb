package integrator

// Sample is the state recorded at the end of one step.
type Sample struct {
	Altitude float64 // m, never negative
	Velocity float64 // m/s
	HeatFlux float64 // W/m^2, rho * v^3
}

// Trajectory is the ordered output of one run. Sample i was recorded at
// simulated time i * TimeStep. Sample 0 is the initial condition and its
// HeatFlux is zero by convention, so it carries no flux information.
//
// A Trajectory is not modified after it is returned.
type Trajectory struct {
	timeStep float64
	samples  []Sample
}

// NewTrajectory copies samples into a Trajectory. It is used when a series
// is read back from disk rather than integrated.
func NewTrajectory(timeStep float64, samples []Sample) *Trajectory {
	buf := make([]Sample, len(samples))
	copy(buf, samples)
	return &Trajectory{timeStep, buf}
}

func (t *Trajectory) Len() int { return len(t.samples) }
func (t *Trajectory) TimeStep() float64 { return t.timeStep }
func (t *Trajectory) At(i int) Sample { return t.samples[i] }
func (t *Trajectory) Time(i int) float64 { return float64(i) * t.timeStep }
func (t *Trajectory) Final() Sample { return t.samples[len(t.samples)-1] }
func (t *Trajectory) Duration() float64 { return t.Time(len(t.samples) - 1) }

// Impacted reports whether the run ended on the ground. A run cut off by
// the step budget has a positive final altitude.
func (t *Trajectory) Impacted() bool { return t.Final().Altitude == 0 }

// Samples returns a copy of the recorded samples.
func (t *Trajectory) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

func (t *Trajectory) Altitudes() []float64 {
	out := make([]float64, len(t.samples))
	for i := range t.samples {
		out[i] = t.samples[i].Altitude
	}
	return out
}

func (t *Trajectory) Velocities() []float64 {
	out := make([]float64, len(t.samples))
	for i := range t.samples {
		out[i] = t.samples[i].Velocity
	}
	return out
}

func (t *Trajectory) HeatFluxes() []float64 {
	out := make([]float64, len(t.samples))
	for i := range t.samples {
		out[i] = t.samples[i].HeatFlux
	}
	return out
}

func (t *Trajectory) Times() []float64 {
	out := make([]float64, len(t.samples))
	for i := range out {
		out[i] = t.Time(i)
	}
	return out
}
