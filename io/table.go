package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

// Column layout of trajectory tables.
const (
	StepColumn = iota
	TimeColumn
	AltitudeColumn
	VelocityColumn
	HeatFluxColumn
)

// WriteTrajectory writes traj as a whitespace separated table. Lines in
// header are written first as '#' comments.
func WriteTrajectory(w io.Writer, traj *integrator.Trajectory, header ...string) error {
	bw := bufio.NewWriter(w)
	for _, line := range header {
		fmt.Fprintf(bw, "# %s\n", line)
	}
	fmt.Fprintf(bw, "# time_step = %.17g\n", traj.TimeStep())
	fmt.Fprintln(bw, "# step time_s altitude_m velocity_m_s heat_flux_w_m2")

	for i := 0; i < traj.Len(); i++ {
		s := traj.At(i)
		fmt.Fprintf(
			bw, "%d %.17g %.17g %.17g %.17g\n",
			i, traj.Time(i), s.Altitude, s.Velocity, s.HeatFlux,
		)
	}
	return bw.Flush()
}

// WriteAnalysis writes res as a whitespace separated table.
func WriteAnalysis(w io.Writer, res *analyze.Result, header ...string) error {
	bw := bufio.NewWriter(w)
	for _, line := range header {
		fmt.Fprintf(bw, "# %s\n", line)
	}
	fmt.Fprintln(bw,
		"# source_index altitude_m raw_flux_w_m2 cooled_flux_w_m2 "+
			"energy_normal_j_m2 energy_cooled_j_m2 "+
			"percent_normal percent_cooled",
	)

	for i := 0; i < res.Len(); i++ {
		fmt.Fprintf(
			bw, "%d %.17g %.17g %.17g %.17g %.17g %.17g %.17g\n",
			res.SourceIndex[i], res.Altitude[i],
			res.RawHeatFlux[i], res.CooledHeatFlux[i],
			res.CumulativeEnergyNormal[i], res.CumulativeEnergyCooled[i],
			res.PercentCapacityNormal[i], res.PercentCapacityCooled[i],
		)
	}
	return bw.Flush()
}

func WriteTrajectoryFile(fname string, traj *integrator.Trajectory, header ...string) error {
	return writeFile(fname, func(w io.Writer) error {
		return WriteTrajectory(w, traj, header...)
	})
}

func WriteAnalysisFile(fname string, res *analyze.Result, header ...string) error {
	return writeFile(fname, func(w io.Writer) error {
		return WriteAnalysis(w, res, header...)
	})
}

func writeFile(fname string, write func(io.Writer) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTrajectory reads a table written by WriteTrajectory. The time step is
// recovered from the time column, so a single-sample table has a time step
// of zero.
func ReadTrajectory(fname string) (*integrator.Trajectory, error) {
	colIdxs := []int{TimeColumn, AltitudeColumn, VelocityColumn, HeatFluxColumn}
	cols, err := ReadTable(fname, colIdxs)
	if err != nil {
		return nil, err
	}

	if len(cols) != len(colIdxs) || len(cols[0]) == 0 {
		return nil, fmt.Errorf("Trajectory file '%s' contains no samples.", fname)
	}
	ts, hs, vs, qs := cols[0], cols[1], cols[2], cols[3]

	samples := make([]integrator.Sample, len(ts))
	for i := range samples {
		if hs[i] < 0 {
			return nil, fmt.Errorf(
				"Sample %d of '%s' has negative altitude %g.", i, fname, hs[i],
			)
		}
		samples[i] = integrator.Sample{Altitude: hs[i], Velocity: vs[i], HeatFlux: qs[i]}
	}

	dt := 0.0
	if len(ts) > 1 {
		dt = ts[1] - ts[0]
	}
	return integrator.NewTrajectory(dt, samples), nil
}

// ReadTable reads the columns colIdxs of a whitespace separated table.
// Blank lines and lines starting with '#' are skipped.
func ReadTable(fname string, colIdxs []int) ([][]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols := make([][]float64, len(colIdxs))
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		tok := strings.Fields(line)
		for i, idx := range colIdxs {
			if idx >= len(tok) {
				return nil, fmt.Errorf(
					"Line %d of '%s' has %d columns, but column %d was requested.",
					lineNum, fname, len(tok), idx,
				)
			}
			x, err := strconv.ParseFloat(tok[idx], 64)
			if err != nil {
				return nil, fmt.Errorf(
					"Line %d of '%s' has an invalid value in column %d: %w",
					lineNum, fname, idx, err,
				)
			}
			cols[i] = append(cols[i], x)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
