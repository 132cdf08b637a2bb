package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/littlejoeyc/starship-reentry-sim/archive"
	"github.com/littlejoeyc/starship-reentry-sim/io"
	"github.com/littlejoeyc/starship-reentry-sim/study"
)

var exampleUsage = strings.TrimSpace(`
  reentry run --preset heavy --out out
  reentry run run.ini --signed-drag --no-charts
  reentry analyze out/light.trajectory.dat --cooling 0.5
  reentry example-config toml > run.toml
  reentry watch run.toml --out out
`)

// runFlags are the command line overrides shared by run, watch and
// analyze. Only flags that were set override the configuration.
type runFlags struct {
	preset     string
	out        string
	noCharts   bool
	archive    bool
	signedDrag bool

	mass      float64
	maxSteps  int
	threshold float64
	cooling   float64
	capacity  float64
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.preset, "preset", io.DefaultPreset, "parameter preset ["+strings.Join(io.PresetNames(), " | ")+"]")
	fs.StringVar(&f.out, "out", "", "directory that tables and charts are written to")
	fs.BoolVar(&f.noCharts, "no-charts", false, "skip chart rendering")
	fs.BoolVar(&f.archive, "archive", false, "require archiving to ArchiveDSN or $"+io.EnvArchiveDSN)
	fs.BoolVar(&f.signedDrag, "signed-drag", false, "use the Signed force model")

	fs.Float64Var(&f.mass, "mass", 0, "vehicle mass in kg")
	fs.IntVar(&f.maxSteps, "max-steps", 0, "maximum number of recorded samples")
	fs.Float64Var(&f.threshold, "threshold", 0, "plasma heat flux threshold in W/m^2")
	fs.Float64Var(&f.cooling, "cooling", 0, "magnetic cooling factor in (0, 1]")
	fs.Float64Var(&f.capacity, "capacity", 0, "tile capacity in J/m^2")
}

func main() {
	var level string
	flags := &runFlags{}

	root := &cobra.Command{
		Use:           "reentry",
		Short:         "Simulate the heating of a body reentering an exponential atmosphere",
		Example:       exampleUsage,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&level, "log-level", "", "log level (default: $"+io.EnvLogLevel+" or info)")

	logger := func() zerolog.Logger { return newLogger(level) }

	run := &cobra.Command{
		Use:   "run [config]",
		Short: "Integrate, analyze and report one reentry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			wrap, err := loadConfig(cmd.Flags(), flags, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := study.New(wrap, log)
			if wrap.Output.ValidArchiveDSN() {
				client, err := openArchive(ctx, wrap.Output.ArchiveDSN)
				if err != nil {
					return err
				}
				defer client.Close()
				s.Sink = client
			}

			out, err := s.Run(ctx)
			if err != nil {
				return err
			}
			printSummary(os.Stdout, wrap.Output.Name, out)
			return nil
		},
	}
	flags.register(run.Flags())

	watch := &cobra.Command{
		Use:   "watch <config>",
		Short: "Re-run a study whenever its config file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			if _, err := loadConfig(cmd.Flags(), flags, args); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := study.NewWatcher(args[0], log, func(ctx context.Context) {
				wrap, err := loadConfig(cmd.Flags(), flags, args)
				if err != nil {
					log.Error().Err(err).Msg("Could not load config")
					return
				}
				out, err := study.New(wrap, log).Run(ctx)
				if err != nil {
					log.Error().Err(err).Str("kind", errorKind(err)).Msg("Study failed")
					return
				}
				printSummary(os.Stdout, wrap.Output.Name, out)
			})
			log.Info().Str("config", args[0]).Msg("Watching for changes")
			return w.Run(ctx)
		},
	}
	flags.register(watch.Flags())

	var configFile string
	analyzeCmd := &cobra.Command{
		Use:   "analyze <trajectory.dat>",
		Short: "Re-analyze a trajectory table written by run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			var cfgArgs []string
			if configFile != "" {
				cfgArgs = []string{configFile}
			}
			wrap, err := loadConfig(cmd.Flags(), flags, cfgArgs)
			if err != nil {
				return err
			}

			start := time.Now()
			out, err := study.Reanalyze(args[0], wrap)
			if err != nil {
				return err
			}
			log.Info().
				Str("file", args[0]).
				Int("samples", out.Summary.Samples).
				Int("plasma_samples", out.Summary.PlasmaSamples).
				Dur("elapsed", time.Since(start)).
				Msg("Analyzed trajectory")

			if wrap.Output.ValidDir() {
				if err := os.MkdirAll(wrap.Output.Dir, 0755); err != nil {
					return err
				}
				fname := study.AnalysisFile(wrap.Output.Dir, wrap.Output.Name)
				if err := io.WriteAnalysisFile(fname, out.Result, "source = "+args[0]); err != nil {
					return err
				}
				log.Info().Str("file", fname).Msg("Wrote analysis table")
			}
			printSummary(os.Stdout, wrap.Output.Name, out)
			return nil
		},
	}
	analyzeCmd.Flags().StringVar(&configFile, "config", "", "config file for the analysis parameters")
	flags.register(analyzeCmd.Flags())

	presets := &cobra.Command{
		Use:   "presets",
		Short: "List parameter presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range io.PresetNames() {
				wrap, _ := io.PresetWrapper(name)
				sim := &wrap.Simulation
				fmt.Printf(
					"%-6s mass = %-8.3g max_steps = %-7d charts = %s\n",
					name, sim.Mass, sim.MaxSteps, wrap.Output.Charts,
				)
			}
			return nil
		},
	}

	exampleConfig := &cobra.Command{
		Use:       "example-config [ini | toml]",
		Short:     "Print an example configuration file",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"ini", "toml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "ini"
			if len(args) == 1 {
				format = strings.ToLower(args[0])
			}
			switch format {
			case "ini":
				fmt.Println(io.ExampleConfigFile)
			case "toml":
				fmt.Println(io.ExampleTOMLFile)
			default:
				return &loadError{fmt.Errorf(
					"Example config format '%s' is not recognized. Accepted "+
						"formats are [ini | toml].", args[0],
				)}
			}
			return nil
		},
	}

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := io.LoadEnv(); err != nil {
				return &loadError{err}
			}
			dsn := os.Getenv(io.EnvArchiveDSN)
			if dsn == "" {
				return &loadError{fmt.Errorf("$%s is not set.", io.EnvArchiveDSN)}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := openArchive(ctx, dsn)
			if err != nil {
				return err
			}
			defer client.Close()

			recs, err := client.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printHistory(os.Stdout, recs)
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "number of runs to list")

	root.AddCommand(run, watch, analyzeCmd, presets, exampleConfig, history)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", errorKind(err), err.Error())
		os.Exit(exitCode(err))
	}
}

func newLogger(level string) zerolog.Logger {
	if level == "" {
		level = os.Getenv(io.EnvLogLevel)
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func openArchive(ctx context.Context, dsn string) (*archive.Client, error) {
	client, err := archive.New(dsn)
	if err != nil {
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
