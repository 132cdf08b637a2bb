package io

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// tomlFile mirrors RunWrapper with snake_case keys. Pointer fields
// distinguish values set in the file from values inherited from the preset.
type tomlFile struct {
	Simulation struct {
		Preset          string   `toml:"preset"`
		InitialAltitude *float64 `toml:"initial_altitude"`
		InitialVelocity *float64 `toml:"initial_velocity"`
		TimeStep        *float64 `toml:"time_step"`
		MaxSteps        *int     `toml:"max_steps"`
		SeaLevelDensity *float64 `toml:"sea_level_density"`
		ScaleHeight     *float64 `toml:"scale_height"`
		Gravity         *float64 `toml:"gravity"`
		DragCoefficient *float64 `toml:"drag_coefficient"`
		FrontalArea     *float64 `toml:"frontal_area"`
		Mass            *float64 `toml:"mass"`
	} `toml:"simulation"`

	Integrator struct {
		ForceModel *string `toml:"force_model"`
		CheckEvery *int    `toml:"check_every"`
	} `toml:"integrator"`

	Analysis struct {
		PlasmaThreshold *float64 `toml:"plasma_threshold"`
		CoolingFactor   *float64 `toml:"cooling_factor"`
		TileCapacity    *float64 `toml:"tile_capacity"`
	} `toml:"analysis"`

	Output struct {
		Dir        *string `toml:"dir"`
		Name       *string `toml:"name"`
		Charts     *string `toml:"charts"`
		Tables     *bool   `toml:"tables"`
		ArchiveDSN *string `toml:"archive_dsn"`
	} `toml:"output"`
}

// ReadTOMLConfig reads a TOML run configuration. Unknown keys are an error.
func ReadTOMLConfig(fname string) (*RunWrapper, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tf tomlFile
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fname, err)
	}

	wrap, err := PresetWrapper(tf.Simulation.Preset)
	if err != nil {
		return nil, err
	}
	tf.apply(wrap)
	return wrap, nil
}

func (tf *tomlFile) apply(wrap *RunWrapper) {
	sim, con := &tf.Simulation, &wrap.Simulation
	setFloat(sim.InitialAltitude, &con.InitialAltitude)
	setFloat(sim.InitialVelocity, &con.InitialVelocity)
	setFloat(sim.TimeStep, &con.TimeStep)
	setInt(sim.MaxSteps, &con.MaxSteps)
	setFloat(sim.SeaLevelDensity, &con.SeaLevelDensity)
	setFloat(sim.ScaleHeight, &con.ScaleHeight)
	setFloat(sim.Gravity, &con.Gravity)
	setFloat(sim.DragCoefficient, &con.DragCoefficient)
	setFloat(sim.FrontalArea, &con.FrontalArea)
	setFloat(sim.Mass, &con.Mass)

	setString(tf.Integrator.ForceModel, &wrap.Integrator.ForceModel)
	setInt(tf.Integrator.CheckEvery, &wrap.Integrator.CheckEvery)

	setFloat(tf.Analysis.PlasmaThreshold, &wrap.Analysis.PlasmaThreshold)
	setFloat(tf.Analysis.CoolingFactor, &wrap.Analysis.CoolingFactor)
	setFloat(tf.Analysis.TileCapacity, &wrap.Analysis.TileCapacity)

	out := &wrap.Output
	setString(tf.Output.Dir, &out.Dir)
	setString(tf.Output.Name, &out.Name)
	setString(tf.Output.Charts, &out.Charts)
	if tf.Output.Tables != nil {
		out.Tables = *tf.Output.Tables
	}
	setString(tf.Output.ArchiveDSN, &out.ArchiveDSN)
}

func setFloat(src *float64, dst *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(src *int, dst *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(src *string, dst *string) {
	if src != nil {
		*dst = *src
	}
}
