package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pflag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/archive"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
	"github.com/littlejoeyc/starship-reentry-sim/io"
	"github.com/littlejoeyc/starship-reentry-sim/study"
)

func parseFlags(t *testing.T, args ...string) (*pflag.FlagSet, *runFlags) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := &runFlags{}
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return fs, f
}

func clearEnv(t *testing.T) {
	for _, key := range []string{io.EnvOutputDir, io.EnvArchiveDSN, io.EnvForceModel} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFlags(t *testing.T) {
	clearEnv(t)
	fs, f := parseFlags(t,
		"--preset", "heavy", "--mass", "1.5e5", "--cooling", "0.5",
		"--signed-drag", "--no-charts", "--out", "results",
	)

	wrap, err := loadConfig(fs, f, nil)
	require.NoError(t, err)
	assert.Equal(t, "heavy", wrap.Simulation.Preset)
	assert.Equal(t, 1.5e5, wrap.Simulation.Mass)
	assert.Equal(t, 100000, wrap.Simulation.MaxSteps)
	assert.Equal(t, 0.5, wrap.Analysis.CoolingFactor)
	assert.Equal(t, 1e6, wrap.Analysis.TileCapacity, "unset flags leave values alone")
	assert.Equal(t, "Signed", wrap.Integrator.ForceModel)
	assert.Equal(t, "None", wrap.Output.Charts)
	assert.Equal(t, "results", wrap.Output.Dir)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	fname := filepath.Join(t.TempDir(), "run.ini")
	require.NoError(t, os.WriteFile(fname, []byte(
		"[Simulation]\nPreset = heavy\nMaxSteps = 5000\n\n[Output]\nDir = file-out\n",
	), 0644))
	t.Setenv(io.EnvOutputDir, "env-out")

	fs, f := parseFlags(t, "--max-steps", "10")
	wrap, err := loadConfig(fs, f, []string{fname})
	require.NoError(t, err)
	assert.Equal(t, 2e5, wrap.Simulation.Mass)
	assert.Equal(t, 10, wrap.Simulation.MaxSteps)
	assert.Equal(t, "env-out", wrap.Output.Dir)

	fs, f = parseFlags(t, "--preset", "light")
	_, err = loadConfig(fs, f, []string{fname})
	assert.Equal(t, 2, exitCode(err))

	fs, f = parseFlags(t, "--archive")
	_, err = loadConfig(fs, f, []string{fname})
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	cfgErr := &integrator.ConfigError{Field: "Mass", Value: 0, Reason: "must be positive"}
	divErr := &integrator.DivergenceError{Step: 1}
	parErr := &analyze.ParamError{Param: "CoolingFactor", Value: 2, Reason: "must be in (0, 1]"}

	table := []struct {
		err  error
		code int
		kind string
	}{
		{nil, 0, ""},
		{cfgErr, 2, "invalid config"},
		{fmt.Errorf("integrate: %w", cfgErr), 2, "invalid config"},
		{parErr, 2, "invalid parameters"},
		{&loadError{errors.New("bad file")}, 2, "config"},
		{fmt.Errorf("integrate: %w", divErr), 3, "numerical divergence"},
		{errors.New("connection refused"), 1, "error"},
	}

	for i, test := range table {
		assert.Equal(t, test.code, exitCode(test.err), "%d) %v", i, test.err)
		if test.err != nil {
			assert.Equal(t, test.kind, errorKind(test.err), "%d) %v", i, test.err)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	traj := integrator.NewTrajectory(1, []integrator.Sample{
		{Altitude: 100, Velocity: 10, HeatFlux: 0}, {Altitude: 90, Velocity: 10, HeatFlux: 200}, {Altitude: 80, Velocity: 10, HeatFlux: 50}, {Altitude: 0, Velocity: 10, HeatFlux: 400},
	})
	res, err := analyze.Analyze(traj, analyze.Params{
		PlasmaThreshold: 100, CoolingFactor: 0.5, TileCapacity: 500, TimeStep: 1,
	})
	require.NoError(t, err)
	out := &study.Outcome{Trajectory: traj, Result: res, Summary: analyze.Summarize(traj, res)}

	buf := &bytes.Buffer{}
	printSummary(buf, "hop", out)
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "hop\n"))
	assert.Contains(t, text, "4 (impact)")
	assert.Contains(t, text, "plasma samples       2")
	assert.Contains(t, text, "120.0% (cooled 60.0%)")
	assert.Contains(t, text, "(cooled never)")
}

func TestPrintHistory(t *testing.T) {
	rec := archive.NewRecord(
		uuid.MustParse("0b6f2c4e-9d7a-4f5e-8a1b-2c3d4e5f6a7b"),
		"light", "light", "Reference",
		integrator.Config{Mass: 1e5}, analyze.Params{},
		analyze.Summary{Samples: 200000, ExhaustionAltitudeNormal: math.NaN()},
	)
	rec.CreatedAt = time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)

	buf := &bytes.Buffer{}
	require.NoError(t, printHistory(buf, []*archive.Record{rec}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "0b6f2c4e  2026-10-01 12:30  light"))
}
