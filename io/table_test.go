package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

func shortRun(t *testing.T) *integrator.Trajectory {
	cfg := DefaultRunWrapper().Simulation.Integrator()
	cfg.MaxSteps = 50
	traj, err := integrator.Run(cfg)
	require.NoError(t, err)
	return traj
}

func TestWriteTrajectory(t *testing.T) {
	traj := integrator.NewTrajectory(0.5, []integrator.Sample{
		{Altitude: 100, Velocity: 10, HeatFlux: 0}, {Altitude: 95, Velocity: 10.5, HeatFlux: 1234.5},
	})

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTrajectory(buf, traj, "preset = light"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# preset = light", lines[0])
	assert.Equal(t, "# time_step = 0.5", lines[1])
	assert.Equal(t, "0 0 100 10 0", lines[3])
	assert.Equal(t, "1 0.5 95 10.5 1234.5", lines[4])
}

func TestTrajectoryFile(t *testing.T) {
	traj := shortRun(t)
	fname := filepath.Join(t.TempDir(), "light.trajectory.dat")
	require.NoError(t, WriteTrajectoryFile(fname, traj, "run_id = test"))

	read, err := ReadTrajectory(fname)
	require.NoError(t, err)
	assert.Equal(t, traj.Len(), read.Len())
	assert.Equal(t, traj.TimeStep(), read.TimeStep())
	assert.Equal(t, traj.Samples(), read.Samples())
}

func TestWriteAnalysis(t *testing.T) {
	traj := integrator.NewTrajectory(1, []integrator.Sample{
		{Altitude: 100, Velocity: 10, HeatFlux: 0}, {Altitude: 90, Velocity: 10, HeatFlux: 200}, {Altitude: 80, Velocity: 10, HeatFlux: 50}, {Altitude: 70, Velocity: 10, HeatFlux: 400},
	})
	res, err := analyze.Analyze(traj, analyze.Params{
		PlasmaThreshold: 100, CoolingFactor: 0.5, TileCapacity: 1000, TimeStep: 1,
	})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteAnalysis(buf, res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "# source_index"))
	assert.Equal(t, "1 90 200 100 200 100 20 10", lines[1])
	assert.Equal(t, "3 70 400 200 600 300 60 30", lines[2])
}

func TestReadTrajectoryMissing(t *testing.T) {
	_, err := ReadTrajectory(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}

func TestReadTable(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "t.dat")
	text := "# a b c\n\n1 2 3\n  4\t5   6\n# trailing\n"
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))

	cols, err := ReadTable(fname, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 6}, {1, 4}}, cols)

	for _, bad := range []string{"1 2\n", "1 x 3\n"} {
		require.NoError(t, os.WriteFile(fname, []byte(bad), 0644))
		_, err := ReadTable(fname, []int{0, 1, 2})
		assert.Error(t, err, bad)
	}
}

func TestReadTrajectoryEmpty(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "empty.dat")
	require.NoError(t, os.WriteFile(fname, []byte("# time_step = 0.1\n"), 0644))
	_, err := ReadTrajectory(fname)
	assert.Error(t, err)
}
