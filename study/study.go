/*package study runs a complete reentry study: integrate the configured
vehicle, analyze the plasma regime, summarize, then write tables and charts
and archive the result.
*/
package study

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/archive"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
	"github.com/littlejoeyc/starship-reentry-sim/io"
	"github.com/littlejoeyc/starship-reentry-sim/render"
)

// Sink receives the record of every finished study.
type Sink interface {
	Save(ctx context.Context, rec *archive.Record) error
}

type Study struct {
	Wrap *io.RunWrapper
	Log  zerolog.Logger
	// Optional.
	Sink Sink
}

// Outcome is everything a study produced. Result is nil when the
// trajectory was too short to analyze.
type Outcome struct {
	RunID      uuid.UUID
	Trajectory *integrator.Trajectory
	Result     *analyze.Result
	Summary    analyze.Summary
	Files      []string
	Elapsed    time.Duration
}

// Exhausted reports whether the run ended on its step budget rather than
// on impact.
func (out *Outcome) Exhausted() bool {
	return !out.Trajectory.Impacted()
}

func New(wrap *io.RunWrapper, log zerolog.Logger) *Study {
	return &Study{Wrap: wrap, Log: log}
}

// Run executes the study. Configuration errors keep their kind, so callers
// can test them with errors.Is against integrator.ErrInvalidConfig and
// analyze.ErrInvalidParameters.
func (s *Study) Run(ctx context.Context) (*Outcome, error) {
	wrap := s.Wrap
	if err := wrap.Check(); err != nil {
		return nil, err
	}
	charts, err := render.ParseCharts(wrap.Output.Charts)
	if err != nil {
		return nil, err
	}
	in, err := wrap.Integrator.Integrator()
	if err != nil {
		return nil, err
	}
	cfg := wrap.Simulation.Integrator()
	p := wrap.Params()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := &Outcome{RunID: uuid.New()}
	log := s.Log.With().
		Str("run_id", out.RunID.String()).
		Str("name", wrap.Output.Name).
		Str("preset", wrap.Simulation.Preset).
		Str("force_model", in.Model.String()).
		Logger()

	log.Info().
		Float64("mass", cfg.Mass).
		Int("max_steps", cfg.MaxSteps).
		Float64("time_step", cfg.TimeStep).
		Msg("Starting integration")

	start := time.Now()
	out.Trajectory, err = in.RunContext(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}

	if out.Trajectory.Len() < 2 {
		log.Warn().Msg("Trajectory has a single sample; skipping analysis")
	} else if out.Result, err = analyze.Analyze(out.Trajectory, p); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	out.Summary = analyze.Summarize(out.Trajectory, out.Result)
	out.Elapsed = time.Since(start)

	logSummary(log, &out.Summary)
	if out.Exhausted() {
		log.Warn().
			Int("max_steps", cfg.MaxSteps).
			Float64("final_altitude", out.Summary.FinalAltitude).
			Float64("final_velocity", out.Summary.FinalVelocity).
			Msg("Step budget exhausted before impact")
	}

	if wrap.Output.ValidDir() {
		files, err := s.write(out, charts)
		out.Files = files
		if err != nil {
			return out, err
		}
		for _, fname := range files {
			log.Debug().Str("file", fname).Msg("Wrote output")
		}
	}

	if s.Sink != nil {
		rec := archive.NewRecord(
			out.RunID, wrap.Output.Name, wrap.Simulation.Preset,
			in.Model.String(), cfg, p, out.Summary,
		)
		if err := s.Sink.Save(ctx, rec); err != nil {
			return out, fmt.Errorf("archive: %w", err)
		}
		log.Info().Msg("Archived run")
	}

	return out, nil
}

func (s *Study) write(out *Outcome, charts []render.Chart) ([]string, error) {
	con := &s.Wrap.Output
	if err := os.MkdirAll(con.Dir, 0755); err != nil {
		return nil, err
	}

	files := []string{}
	header := []string{
		fmt.Sprintf("run_id = %s", out.RunID),
		fmt.Sprintf("preset = %s", s.Wrap.Simulation.Preset),
		fmt.Sprintf("force_model = %s", s.Wrap.Integrator.ForceModel),
	}

	if con.Tables {
		fname := TrajectoryFile(con.Dir, con.Name)
		if err := io.WriteTrajectoryFile(fname, out.Trajectory, header...); err != nil {
			return files, err
		}
		files = append(files, fname)

		if out.Result != nil {
			fname = AnalysisFile(con.Dir, con.Name)
			if err := io.WriteAnalysisFile(fname, out.Result, header...); err != nil {
				return files, err
			}
			files = append(files, fname)
		}
	}

	title := chartTitle(s.Wrap)
	drawn := 0
	for _, c := range charts {
		fname := render.FileName(con.Dir, con.Name, c)
		if render.Draw(c, fname, title, out.Trajectory, out.Result) {
			files = append(files, fname)
			drawn++
		}
	}
	if drawn > 0 {
		render.Execute()
	}

	return files, nil
}

// Reanalyze analyzes a trajectory table written by an earlier run with the
// analysis section of wrap.
func Reanalyze(fname string, wrap *io.RunWrapper) (*Outcome, error) {
	traj, err := io.ReadTrajectory(fname)
	if err != nil {
		return nil, err
	}
	p := wrap.Analysis.Params(traj.TimeStep())
	res, err := analyze.Analyze(traj, p)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Trajectory: traj,
		Result:     res,
		Summary:    analyze.Summarize(traj, res),
	}, nil
}

// TrajectoryFile is the path of the trajectory table of the named run.
func TrajectoryFile(dir, name string) string {
	return filepath.Join(dir, name+".trajectory.dat")
}

// AnalysisFile is the path of the analysis table of the named run.
func AnalysisFile(dir, name string) string {
	return filepath.Join(dir, name+".analysis.dat")
}

func chartTitle(wrap *io.RunWrapper) string {
	return fmt.Sprintf(
		"%s: $m$ = %.3g kg, $v_0$ = %.4g m/s",
		wrap.Output.Name, wrap.Simulation.Mass, wrap.Simulation.InitialVelocity,
	)
}

func logSummary(log zerolog.Logger, s *analyze.Summary) {
	ev := log.Info().
		Int("samples", s.Samples).
		Bool("impacted", s.Impacted).
		Float64("duration_s", s.Duration).
		Float64("min_altitude", s.MinAltitude).
		Float64("peak_heat_flux", s.PeakHeatFlux).
		Float64("peak_heat_flux_altitude", s.PeakHeatFluxAltitude).
		Int("plasma_samples", s.PlasmaSamples).
		Float64("percent_normal", s.FinalPercentNormal).
		Float64("percent_cooled", s.FinalPercentCooled)
	if s.ExhaustedNormal() {
		ev = ev.Float64("tile_failure_altitude", s.ExhaustionAltitudeNormal)
	}
	if s.ExhaustedCooled() {
		ev = ev.Float64("cooled_tile_failure_altitude", s.ExhaustionAltitudeCooled)
	}
	ev.Msg("Integration finished")
}
