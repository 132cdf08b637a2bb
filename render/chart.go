/*package render draws reentry charts with pyplot.

Chart functions only queue plotting commands. Nothing is drawn until Execute
is called, which runs the queued script in a single python process.
*/
package render

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

type Chart int

const (
	Flux Chart = iota
	Capacity
	Trajectory
)

var chartNames = []string{"Flux", "Capacity", "Trajectory"}

func (c Chart) String() string {
	if c < 0 || int(c) >= len(chartNames) {
		return fmt.Sprintf("Chart(%d)", int(c))
	}
	return chartNames[c]
}

// ParseCharts reads a comma separated list of chart names. "All" selects
// every chart and "None" or the empty string selects none. Duplicates are
// dropped and the order of first appearance is kept.
func ParseCharts(s string) ([]Chart, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return []Chart{}, nil
	case "all":
		return []Chart{Flux, Capacity, Trajectory}, nil
	}

	charts := []Chart{}
	seen := map[Chart]bool{}
	for _, tok := range strings.Split(s, ",") {
		c, ok := parseChart(strings.TrimSpace(tok))
		if !ok {
			return nil, fmt.Errorf(
				"Chart '%s' is not recognized. Accepted charts are [%s], "+
					"All, or None.", tok, strings.Join(chartNames, " | "),
			)
		}
		if !seen[c] {
			seen[c] = true
			charts = append(charts, c)
		}
	}
	return charts, nil
}

func parseChart(s string) (Chart, bool) {
	for i, name := range chartNames {
		if strings.EqualFold(s, name) {
			return Chart(i), true
		}
	}
	return 0, false
}

// FileName is the path a chart of the named run is saved to.
func FileName(dir, name string, c Chart) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.png", name, strings.ToLower(c.String())))
}

// Draw queues chart c of a run and reports whether anything was queued.
// Charts built from plasma-regime data fall back to an empty "No Plasma
// Formation" figure when res is empty. A trajectory chart needs at least
// two samples.
func Draw(
	c Chart, fname, title string,
	traj *integrator.Trajectory, res *analyze.Result,
) bool {
	switch c {
	case Flux:
		return FluxChart(fname, title, res)
	case Capacity:
		return CapacityChart(fname, title, res)
	case Trajectory:
		return TrajectoryChart(fname, title, traj)
	}
	panic(fmt.Sprintf("Unrecognized chart %d", int(c)))
}

const (
	normalLabel = "Normal Plasma Heat Flux"
	cooledLabel = "Magnetic Cooling Heat Flux"
	noPlasma    = "No Plasma Formation"
)

// FluxChart plots raw and cooled heat flux against altitude.
func FluxChart(fname, title string, res *analyze.Result) bool {
	if res == nil || res.Len() == 0 {
		return emptyChart(fname, `Altitude [m]`, `Heat flux [W/m$^2$]`)
	}

	plt.Figure(plt.FigSize(8, 6))
	plotFlux(res)

	plt.Title(title)
	plt.XLabel(`Altitude [m]`, plt.FontSize(16))
	plt.YLabel(`Heat flux [W/m$^2$]`, plt.FontSize(16))
	plt.YScale("log")
	lo, hi := span(res.Altitude)
	plt.XLim(hi, lo)
	plt.Legend(plt.Loc("upper right"), plt.FontSize(12))

	plt.Grid(plt.Axis("y"))
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.SaveFig(fname)
	return true
}

// CapacityChart overlays the percent of tile capacity used on the heat
// flux, both against descending altitude. Flux is on a log scale on the left
// axis and percent on a linear scale on the right, where the 100% line
// marks tile failure.
func CapacityChart(fname, title string, res *analyze.Result) bool {
	if res == nil || res.Len() == 0 {
		return emptyChart(fname, `Altitude [m]`, `Tile capacity used [%]`)
	}

	lo, hi := span(res.Altitude)

	plt.Figure(plt.FigSize(10, 6))
	plotFlux(res)
	plt.XLabel(`Altitude [m]`, plt.FontSize(16))
	plt.YLabel(`Heat flux [W/m$^2$]`, plt.FontSize(16))
	plt.YScale("log")
	plt.XLim(hi, lo)
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.Legend(plt.Loc("upper left"), plt.FontSize(12))

	// Everything below targets the right-hand axis.
	plt.InsertLine("plt.twinx()")
	plt.Plot([]float64{hi, lo}, []float64{100, 100}, "k", plt.LW(1),
		plt.Label("Tile Capacity"))
	plt.Plot(res.Altitude, res.PercentCapacityNormal, "r", plt.LW(2),
		plt.LS("--"), plt.Label("Normal Capacity Used"))
	plt.Plot(res.Altitude, res.PercentCapacityCooled, "b", plt.LW(2),
		plt.LS("--"), plt.Label("Cooled Capacity Used"))
	plt.YLabel(`Tile capacity used [%]`, plt.FontSize(16))
	plt.XLim(hi, lo)
	plt.Legend(plt.Loc("upper right"), plt.FontSize(12))

	plt.Title(title)
	plt.SaveFig(fname)
	return true
}

func plotFlux(res *analyze.Result) {
	plt.Plot(res.Altitude, res.RawHeatFlux, "r", plt.LW(2),
		plt.Label(normalLabel))
	plt.Plot(res.Altitude, res.CooledHeatFlux, "b", plt.LW(2),
		plt.Label(cooledLabel))
}

// emptyChart saves a figure with axes and the no-plasma title but no data,
// so a run that never forms plasma still produces every requested chart.
func emptyChart(fname, xLabel, yLabel string) bool {
	plt.Figure(plt.FigSize(8, 6))
	plt.Title(noPlasma)
	plt.XLabel(xLabel, plt.FontSize(16))
	plt.YLabel(yLabel, plt.FontSize(16))
	plt.SaveFig(fname)
	return true
}

// TrajectoryChart plots altitude against time.
func TrajectoryChart(fname, title string, traj *integrator.Trajectory) bool {
	if traj == nil || traj.Len() < 2 {
		return false
	}

	plt.Figure(plt.FigSize(8, 6))
	plt.Plot(traj.Times(), traj.Altitudes(), "k", plt.LW(2))

	plt.Title(title)
	plt.XLabel(`Time [s]`, plt.FontSize(16))
	plt.YLabel(`Altitude [m]`, plt.FontSize(16))
	plt.XLim(0, traj.Duration())

	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
	return true
}

// Execute runs every queued chart and clears the queue.
func Execute() {
	plt.Execute()
	plt.Reset()
}

func span(xs []float64) (lo, hi float64) {
	lo, hi = math.Inf(+1), math.Inf(-1)
	for _, x := range xs {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}
