package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/counter-sim/counter-sim/sim"
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "counter-sim",
	Short: "Discrete-event simulator for a multi-server service counter",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd executes replications of one scenario using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the counter simulation",
	Run: func(cmd *cobra.Command, args []string) {
		settings := newSettings(cmd)
		sc, err := resolveScenario(settings)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		opts := runOptionsFrom(settings)
		if err := opts.validate(); err != nil {
			logrus.Fatalf("Invalid options: %v", err)
		}

		rec := openRecorder(opts.Record)
		if rec != nil {
			defer rec.Close()
		}

		reps, avg, err := replicate(sc, opts, rec)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := writeReport(os.Stdout, sc, reps, avg, opts.Output); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// presetsCmd lists the built-in scenarios
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.PresetNames() {
			p, _ := sim.Preset(name)
			fmt.Printf("%-10s %s\n", name, describeScenario(p))
		}
	},
}

// newSettings layers environment variables (COUNTERSIM_*) under the command's flags.
func newSettings(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COUNTERSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		logrus.Fatalf("Binding flags: %v", err)
	}
	return v
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerScenarioFlags(runCmd.Flags())
	registerRunFlags(runCmd.Flags())

	registerScenarioFlags(sweepCmd.Flags())
	registerRunFlags(sweepCmd.Flags())
	registerSweepFlags(sweepCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(presetsCmd)
}
