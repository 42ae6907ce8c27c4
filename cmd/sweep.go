package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/counter-sim/counter-sim/sim"
)

// sweepPoint is the averaged outcome of one parameter value.
type sweepPoint struct {
	Value  int         `json:"value"`
	Result *sim.Result `json:"result"`
}

// sweepCmd runs a scenario once per value of an integer parameter
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a scenario across a range of server counts or capacities",
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
		param := settings.GetString("param")
		from, to := settings.GetInt("from"), settings.GetInt("to")

		rec := openRecorder(opts.Record)
		if rec != nil {
			defer rec.Close()
		}

		points, err := sweep(sc, param, from, to, func(point *sim.Scenario) (*sim.Result, error) {
			_, avg, err := replicate(point, opts, rec)
			return avg, err
		})
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		if err := writeSweep(os.Stdout, param, points, opts.Output); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
	},
}

func registerSweepFlags(fs *pflag.FlagSet) {
	fs.String("param", "servers", "Parameter to vary (servers, capacity)")
	fs.Int("from", 1, "First value of the parameter")
	fs.Int("to", 4, "Last value of the parameter (inclusive)")
}

// sweep evaluates run for each value of param in [from, to] applied to a copy of base.
func sweep(base *sim.Scenario, param string, from, to int, run func(*sim.Scenario) (*sim.Result, error)) ([]sweepPoint, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("invalid sweep range %d..%d", from, to)
	}
	points := make([]sweepPoint, 0, to-from+1)
	for value := from; value <= to; value++ {
		point := base.Clone()
		switch param {
		case "servers":
			point.Servers = value
			point.Shifts = nil
		case "capacity":
			point.Capacity = sim.Ptr(value)
		default:
			return nil, fmt.Errorf("unknown sweep parameter %q (servers, capacity)", param)
		}
		point.Name = fmt.Sprintf("%s/%s=%d", scenarioLabel(base), param, value)
		logrus.Infof("sweep %s=%d", param, value)
		res, err := run(point)
		if err != nil {
			return nil, fmt.Errorf("%s=%d: %w", param, value, err)
		}
		points = append(points, sweepPoint{Value: value, Result: res})
	}
	return points, nil
}

func writeSweep(w io.Writer, param string, points []sweepPoint, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tAVG WAIT (min)\tAVG LINE\tUTIL\tP(ALL BUSY)\tP(FULL)\tREJECTED\n", param)
	for _, p := range points {
		r := p.Result
		full := "-"
		if r.CapacityBounded {
			full = fmt.Sprintf("%.4f", r.ProbFull)
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.4f\t%.2f%%\t%.4f\t%s\t%d\n",
			p.Value, 60*r.AvgWaitingTime, r.AvgQueueLength, 100*r.Utilization, r.ProbAllBusy, full, r.Rejected)
	}
	return tw.Flush()
}
