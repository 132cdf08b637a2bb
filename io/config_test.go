package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(contents), 0644))
	return fname
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"heavy", "light"}, PresetNames())

	light, err := PresetWrapper("")
	require.NoError(t, err)
	assert.Equal(t, 1e5, light.Simulation.Mass)
	assert.Equal(t, 200000, light.Simulation.MaxSteps)
	assert.Equal(t, "Capacity", light.Output.Charts)
	assert.Equal(t, "light", light.Output.Name)

	heavy, err := PresetWrapper("Heavy")
	require.NoError(t, err)
	assert.Equal(t, 2e5, heavy.Simulation.Mass)
	assert.Equal(t, 100000, heavy.Simulation.MaxSteps)
	assert.Equal(t, "Flux", heavy.Output.Charts)

	for _, wrap := range []*RunWrapper{light, heavy} {
		cfg := wrap.Simulation.Integrator()
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 500.0, cfg.FrontalArea)
		p := wrap.Params()
		assert.NoError(t, p.Validate())
		assert.NoError(t, wrap.Check())
	}

	// Presets are copies.
	light.Simulation.Mass = 1
	assert.Equal(t, 1e5, DefaultRunWrapper().Simulation.Mass)

	_, err = PresetWrapper("medium")
	assert.Error(t, err)
}

func TestReadRunConfigExample(t *testing.T) {
	fname := writeTemp(t, "run.ini", ExampleConfigFile)

	wrap, err := ReadRunConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, DefaultRunWrapper(), wrap)
}

func TestReadRunConfigPresetLayering(t *testing.T) {
	fname := writeTemp(t, "run.ini", `[Simulation]
Preset = heavy
Mass = 1.5e5

[Integrator]
ForceModel = Signed

[Analysis]
CoolingFactor = 0.4

[Output]
Dir = out
Tables = false
`)

	wrap, err := ReadRunConfig(fname)
	require.NoError(t, err)

	assert.Equal(t, 1.5e5, wrap.Simulation.Mass)
	assert.Equal(t, 100000, wrap.Simulation.MaxSteps, "inherited from preset")
	assert.Equal(t, 7222.0, wrap.Simulation.InitialVelocity)
	assert.Equal(t, 0.4, wrap.Analysis.CoolingFactor)
	assert.Equal(t, 1e6, wrap.Analysis.TileCapacity)
	assert.Equal(t, "out", wrap.Output.Dir)
	assert.Equal(t, "heavy", wrap.Output.Name)
	assert.False(t, wrap.Output.Tables)

	in, err := wrap.Integrator.Integrator()
	require.NoError(t, err)
	assert.Equal(t, integrator.Signed, in.Model)
}

func TestReadRunConfigErrors(t *testing.T) {
	table := []string{
		"[Simulation]\nPreset = medium\n",
		"[Simulation]\nWingspan = 9\n",
		"[Simulation]\nMass = heavy\n",
		"[Thrusters]\nCount = 33\n",
	}

	for i, contents := range table {
		fname := writeTemp(t, "run.ini", contents)
		_, err := ReadRunConfig(fname)
		assert.Error(t, err, "%d) %q", i, contents)
	}

	_, err := ReadRunConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	wrap := DefaultRunWrapper()
	wrap.Integrator.ForceModel = "Quadratic"
	assert.Error(t, wrap.Check())

	wrap = DefaultRunWrapper()
	wrap.Integrator.CheckEvery = -1
	assert.Error(t, wrap.Check())

	wrap = DefaultRunWrapper()
	wrap.Output.Name = ""
	assert.Error(t, wrap.Check())
}

func TestReadTOMLConfig(t *testing.T) {
	fname := writeTemp(t, "run.toml", ExampleTOMLFile)

	wrap, err := ReadRunConfig(fname)
	require.NoError(t, err)

	want, err := PresetWrapper("heavy")
	require.NoError(t, err)
	want.Output.Dir = "out"
	assert.Equal(t, want, wrap)
}

func TestReadTOMLConfigOverrides(t *testing.T) {
	fname := writeTemp(t, "run.toml", `
[simulation]
max_steps = 500

[analysis]
plasma_threshold = 2.5e5

[output]
tables = false
archive_dsn = "postgres://localhost/reentry"
`)

	wrap, err := ReadTOMLConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, "light", wrap.Simulation.Preset)
	assert.Equal(t, 1e5, wrap.Simulation.Mass)
	assert.Equal(t, 500, wrap.Simulation.MaxSteps)
	assert.Equal(t, 2.5e5, wrap.Analysis.PlasmaThreshold)
	assert.False(t, wrap.Output.Tables)
	assert.True(t, wrap.Output.ValidArchiveDSN())
}

func TestReadTOMLConfigUnknownKey(t *testing.T) {
	fname := writeTemp(t, "run.toml", "[simulation]\nwingspan = 9.0\n")
	_, err := ReadTOMLConfig(fname)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "reentry.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"REENTRY_ARCHIVE_DSN=postgres://from-dotenv/reentry\n",
	), 0644))

	t.Setenv(EnvOutputDir, "/tmp/reentry-out")
	t.Setenv(EnvForceModel, "Signed")
	t.Setenv(EnvArchiveDSN, "")
	os.Unsetenv(EnvArchiveDSN)

	require.NoError(t, LoadEnv(envFile))
	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))

	wrap := DefaultRunWrapper()
	ApplyEnv(wrap)
	assert.Equal(t, "/tmp/reentry-out", wrap.Output.Dir)
	assert.Equal(t, "Signed", wrap.Integrator.ForceModel)
	assert.Equal(t, "postgres://from-dotenv/reentry", wrap.Output.ArchiveDSN)
}
