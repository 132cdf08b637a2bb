package main

import (
	"errors"
	"fmt"
	stdio "io"
	"math"
	"text/tabwriter"

	pflag "github.com/spf13/pflag"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/archive"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
	"github.com/littlejoeyc/starship-reentry-sim/io"
	"github.com/littlejoeyc/starship-reentry-sim/study"
)

// loadError marks failures to read or assemble a configuration. They exit
// with the same status as invalid configuration values.
type loadError struct{ err error }

func (e *loadError) Error() string { return e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

// loadConfig builds the run configuration. Values are layered in order:
// preset, config file, environment, then any flags that were set.
func loadConfig(fs *pflag.FlagSet, f *runFlags, args []string) (*io.RunWrapper, error) {
	if err := io.LoadEnv(); err != nil {
		return nil, &loadError{err}
	}

	var (
		wrap *io.RunWrapper
		err  error
	)
	if len(args) > 0 {
		if fs.Changed("preset") {
			return nil, &loadError{fmt.Errorf(
				"--preset cannot be combined with a config file. Set " +
					"Preset in the [Simulation] section instead.",
			)}
		}
		wrap, err = io.ReadRunConfig(args[0])
	} else {
		wrap, err = io.PresetWrapper(f.preset)
	}
	if err != nil {
		return nil, &loadError{err}
	}

	io.ApplyEnv(wrap)
	f.apply(fs, wrap)
	if f.archive && !wrap.Output.ValidArchiveDSN() {
		return nil, &loadError{fmt.Errorf(
			"--archive was given, but neither ArchiveDSN nor $%s is set.",
			io.EnvArchiveDSN,
		)}
	}
	return wrap, nil
}

func (f *runFlags) apply(fs *pflag.FlagSet, wrap *io.RunWrapper) {
	if fs.Changed("out") {
		wrap.Output.Dir = f.out
	}
	if f.noCharts {
		wrap.Output.Charts = "None"
	}
	if f.signedDrag {
		wrap.Integrator.ForceModel = integrator.Signed.String()
	}

	if fs.Changed("mass") {
		wrap.Simulation.Mass = f.mass
	}
	if fs.Changed("max-steps") {
		wrap.Simulation.MaxSteps = f.maxSteps
	}
	if fs.Changed("threshold") {
		wrap.Analysis.PlasmaThreshold = f.threshold
	}
	if fs.Changed("cooling") {
		wrap.Analysis.CoolingFactor = f.cooling
	}
	if fs.Changed("capacity") {
		wrap.Analysis.TileCapacity = f.capacity
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, integrator.ErrInvalidConfig):
		return "invalid config"
	case errors.Is(err, analyze.ErrInvalidParameters):
		return "invalid parameters"
	case errors.Is(err, integrator.ErrNumericalDivergence):
		return "numerical divergence"
	}
	var lerr *loadError
	if errors.As(err, &lerr) {
		return "config"
	}
	return "error"
}

func exitCode(err error) int {
	var lerr *loadError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, integrator.ErrNumericalDivergence):
		return 3
	case errors.Is(err, integrator.ErrInvalidConfig),
		errors.Is(err, analyze.ErrInvalidParameters),
		errors.As(err, &lerr):
		return 2
	}
	return 1
}

func printSummary(w stdio.Writer, name string, out *study.Outcome) {
	s := &out.Summary
	ending := "impact"
	if !s.Impacted {
		ending = "step budget exhausted"
	}

	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  samples              %d (%s)\n", s.Samples, ending)
	fmt.Fprintf(w, "  simulated time       %.1f s\n", s.Duration)
	fmt.Fprintf(w, "  final state          h = %.6g m, v = %.6g m/s\n", s.FinalAltitude, s.FinalVelocity)
	fmt.Fprintf(w, "  minimum altitude     %.6g m\n", s.MinAltitude)
	fmt.Fprintf(w, "  peak heat flux       %.4g W/m^2 at %.6g m, t = %.1f s\n",
		s.PeakHeatFlux, s.PeakHeatFluxAltitude, s.PeakHeatFluxTime)
	fmt.Fprintf(w, "  plasma samples       %d\n", s.PlasmaSamples)
	if s.PlasmaSamples == 0 {
		return
	}
	fmt.Fprintf(w, "  plasma altitudes     %.6g m to %.6g m\n", s.PlasmaOnsetAltitude, s.PlasmaEndAltitude)
	fmt.Fprintf(w, "  energy deposited     %.4g J/m^2 (cooled %.4g J/m^2)\n", s.TotalEnergyNormal, s.TotalEnergyCooled)
	fmt.Fprintf(w, "  tile capacity used   %.1f%% (cooled %.1f%%)\n", s.FinalPercentNormal, s.FinalPercentCooled)
	fmt.Fprintf(w, "  tile failure         %s (cooled %s)\n",
		altitudeOrNever(s.ExhaustionAltitudeNormal), altitudeOrNever(s.ExhaustionAltitudeCooled))
}

func altitudeOrNever(h float64) string {
	if math.IsNaN(h) {
		return "never"
	}
	return fmt.Sprintf("%.6g m", h)
}

func printHistory(w stdio.Writer, recs []*archive.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tMODEL\tMASS\tSAMPLES\tIMPACT\tPEAK FLUX\tCAPACITY %\tCOOLED %")
	for _, rec := range recs {
		s := &rec.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3g\t%d\t%t\t%.4g\t%.1f\t%.1f\n",
			rec.ID.String()[:8], rec.CreatedAt.Format("2006-01-02 15:04"),
			rec.Name, rec.ForceModel, rec.Config.Mass, s.Samples, s.Impacted,
			s.PeakHeatFlux, s.FinalPercentNormal, s.FinalPercentCooled,
		)
	}
	return tw.Flush()
}
