package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/dataset"
	"github.com/inventory-sim/inventory-sim/sim/store"
	"github.com/inventory-sim/inventory-sim/sim/telemetry"
	"github.com/inventory-sim/inventory-sim/sim/trace"
)

var (
	// shared by all subcommands
	logLevel      string // Log verbosity level
	defaultsPath  string // Path to defaults.yaml
	materialsPath string // Material master data CSV
	stockoutRule  string // Overrides simulation.stockout_rule when set

	// result outputs
	outPrefix   string // Prefix for exported result files
	dbPath      string // SQLite run history
	runLabel    string // Label stored with the run
	metricsFile string // Prometheus textfile

	// run only
	traceLevel    string // none or events
	traceMaterial string // restrict the trace to one material
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "inventory-sim",
	Short: "Discrete-event simulator for spare-part inventory policies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd replays the materials under their current policies
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the materials under their imported (s,S) policies",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, events", traceLevel)
		}

		materials, err := dataset.LoadMaterials(materialsPath, cfg.Simulation.MonthSizeDays)
		if err != nil {
			logrus.Fatalf("Failed to load materials: %v", err)
		}

		var st *trace.SimulationTrace
		if trace.TraceLevel(traceLevel) == trace.TraceLevelEvents {
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents, MaterialID: traceMaterial})
		}
		result, err := simulate(materials, cfg.SimConfig(), st)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if st != nil {
			s := trace.Summarize(st)
			logrus.Infof("trace: %d events, %d consumptions, %d arrivals, %d reorders, %d short",
				s.TotalEvents, s.Consumptions, s.Arrivals, s.Reorders, s.ShortEvents)
		}

		if err := result.WriteSummary(os.Stdout); err != nil {
			logrus.Fatalf("Failed to print summary: %v", err)
		}
		if err := publish(cmd.Context(), cfg, result, materials, "run"); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// simulate runs one simulation, recording events into st when it is non-nil.
func simulate(materials []sim.Material, simCfg sim.SimConfig, st *trace.SimulationTrace) (*sim.Result, error) {
	s, err := sim.NewSimulator(materials, simCfg)
	if err != nil {
		return nil, err
	}
	if st != nil {
		s.SetTrace(st)
	}
	return s.Run()
}

// mustLoadConfig reads the defaults file and applies flag overrides.
func mustLoadConfig(cmd *cobra.Command) Config {
	cfg, err := loadDefaultsConfig(defaultsPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if cmd.Flags().Changed("stockout-rule") {
		if !sim.IsValidStockoutRule(stockoutRule) {
			logrus.Fatalf("Unknown stockout rule %q; valid: %s, %s", stockoutRule, sim.StockoutRuleLevel, sim.StockoutRulePosition)
		}
		cfg.Simulation.StockoutRule = stockoutRule
	}
	if materialsPath == "" {
		logrus.Fatalf("Materials file not provided. Use --materials.")
	}
	return cfg
}

// publish writes the optional outputs of a finished run: result files,
// a row in the run history and a Prometheus textfile.
func publish(ctx context.Context, cfg Config, result *sim.Result, materials []sim.Material, defaultLabel string) error {
	if outPrefix != "" {
		if err := dataset.Export(outPrefix, result, materials, cfg.Simulation.MonthSizeDays); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}
	if dbPath != "" {
		label := runLabel
		if label == "" {
			label = defaultLabel
		}
		if err := saveRun(ctx, dbPath, label, result); err != nil {
			return err
		}
	}
	if metricsFile != "" {
		c := telemetry.NewRunCollector()
		c.Observe(result)
		if err := c.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	return nil
}

func saveRun(ctx context.Context, path, label string, result *sim.Result) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()
	id, err := s.SaveRun(ctx, label, result)
	if err != nil {
		return err
	}
	logrus.Infof("saved run %d (%s) to %s", id, label, path)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the defaults YAML file")
	rootCmd.PersistentFlags().StringVar(&materialsPath, "materials", "", "Material master data CSV (headerless)")
	rootCmd.PersistentFlags().StringVar(&stockoutRule, "stockout-rule", "", "Stockout predicate: level or position (overrides defaults)")

	for _, c := range []*cobra.Command{runCmd, calibrateCmd} {
		c.Flags().StringVar(&outPrefix, "out", "", "Prefix for exported result files (none if empty)")
		c.Flags().StringVar(&dbPath, "db", "", "SQLite database recording the run (none if empty)")
		c.Flags().StringVar(&runLabel, "label", "", "Label stored with the run")
		c.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	}

	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Event trace level (none, events)")
	runCmd.Flags().StringVar(&traceMaterial, "trace-material", "", "Restrict the event trace to one material id")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(curveCmd)
}
