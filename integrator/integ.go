/*package integrator advances a rigid body through a single-exponential
atmosphere with a fixed-step semi-implicit Euler scheme and records altitude,
velocity and convective heat flux at every step.
*/
package integrator

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// ForceModel selects how gravity and drag combine into an acceleration.
type ForceModel int

const (
	// Reference subtracts both gravity and drag from the downward velocity
	// regardless of its sign: a = -g - F/m. A body slowed to a stop is then
	// pushed back up and never reaches the ground. This is the default.
	Reference ForceModel = iota
	// Signed lets gravity pull toward the ground and drag oppose the
	// direction of motion: a = g - sign(v) F/m.
	Signed
)

func (m ForceModel) String() string {
	switch m {
	case Reference:
		return "Reference"
	case Signed:
		return "Signed"
	}
	return fmt.Sprintf("ForceModel(%d)", int(m))
}

// ParseForceModel accepts the names returned by String, case-insensitively.
func ParseForceModel(s string) (ForceModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reference":
		return Reference, nil
	case "signed":
		return Signed, nil
	}
	return Reference, fmt.Errorf(
		"Force model must be one of [Reference | Signed]. '%s' is not "+
			"recognized.", s,
	)
}

func (m ForceModel) acceleration(g, dragAccel, v float64) float64 {
	if m == Signed {
		return g - math.Copysign(dragAccel, v)
	}
	return -g - dragAccel
}

const defaultCheckEvery = 4096

// Integrator runs Configs. The zero value uses the Reference force model.
type Integrator struct {
	Model ForceModel
	// CheckEvery is the number of steps between context checks in
	// RunContext. Zero means 4096.
	CheckEvery int
}

// Run integrates cfg with the Reference force model.
func Run(cfg Config) (*Trajectory, error) {
	return new(Integrator).RunContext(context.Background(), cfg)
}

// RunContext is Run with cooperative cancellation.
func RunContext(ctx context.Context, cfg Config) (*Trajectory, error) {
	return new(Integrator).RunContext(ctx, cfg)
}

func (in *Integrator) Run(cfg Config) (*Trajectory, error) {
	return in.RunContext(context.Background(), cfg)
}

// RunContext integrates until the body reaches the ground or MaxSteps
// samples have been recorded. Running out of steps is not an error; check
// Trajectory.Impacted. On error no Trajectory is returned.
func (in *Integrator) RunContext(ctx context.Context, cfg Config) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	every := in.CheckEvery
	if every <= 0 {
		every = defaultCheckEvery
	}

	capacity := cfg.MaxSteps
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	samples := make([]Sample, 0, capacity)

	h, v := cfg.InitialAltitude, cfg.InitialVelocity
	samples = append(samples, Sample{h, v, 0})

	dt, m := cfg.TimeStep, cfg.Mass
	for step := 1; h > 0 && len(samples) < cfg.MaxSteps; step++ {
		if step%every == 1 || every == 1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		// Density is taken at the start of the step and paired with the
		// velocity at the end of it when computing heat flux.
		rho := cfg.SeaLevelDensity * math.Exp(-h/cfg.ScaleHeight)
		v2 := v * v
		drag := 0.5 * rho * v2 * cfg.DragCoefficient * cfg.FrontalArea
		a := in.Model.acceleration(cfg.Gravity, drag/m, v)

		// Explicit conversions keep these from being fused into FMAs, so
		// results match across architectures.
		v = v + float64(a*dt)
		h = h - float64(v*dt)
		if h < 0 {
			h = 0
		}
		v3 := float64(v*v) * v
		q := rho * v3

		if !finite(h) || !finite(v) || !finite(q) {
			return nil, &DivergenceError{step, h, v, q}
		}
		samples = append(samples, Sample{h, v, q})
	}

	return &Trajectory{timeStep: dt, samples: samples}, nil
}
