package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/counter-sim/counter-sim/sim"
	"github.com/counter-sim/counter-sim/sim/analytic"
)

// runReport is the JSON form of a run command's output.
type runReport struct {
	Scenario     *sim.Scenario      `json:"scenario"`
	Average      *sim.Result        `json:"average"`
	Theory       *analytic.Estimate `json:"theory,omitempty"`
	Replications []replication      `json:"replications"`
}

// writeReport prints avg (and the per-run rows when there is more than one)
// in the requested format.
func writeReport(w io.Writer, sc *sim.Scenario, reps []replication, avg *sim.Result, format string) error {
	theory, hasTheory, theoryErr := analyticReference(sc)
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runReport{Scenario: sc, Average: avg, Theory: theory, Replications: reps})
	}

	fmt.Fprintf(w, "=== Counter Simulation: %s ===\n", scenarioLabel(sc))
	fmt.Fprintf(w, "Scenario             : %s\n", describeScenario(sc))
	printResult(w, avg)
	if hasTheory {
		fmt.Fprintln(w)
		printTheory(w, avg, theory, theoryErr)
	}
	if len(avg.Periods) > 0 {
		fmt.Fprintln(w)
		printPeriods(w, avg.Periods)
	}
	if len(reps) > 1 {
		fmt.Fprintln(w)
		printReplications(w, reps)
	}
	for _, rep := range reps {
		if rep.Summary == nil {
			continue
		}
		fmt.Fprintf(w, "\nRun %d trace: %d events (%d arrivals, %d departures), %d rejections, %d balks, %d evictions, monotonic=%v\n",
			rep.Run, rep.Summary.TotalEvents, rep.Summary.Arrivals, rep.Summary.Departures,
			rep.Summary.Rejections, rep.Summary.Balks, rep.Summary.Evictions, rep.Summary.Monotonic)
	}
	return nil
}

func printResult(w io.Writer, r *sim.Result) {
	fmt.Fprintf(w, "Runs                 : %d\n", r.Runs)
	fmt.Fprintf(w, "Simulated Hours      : %.4f\n", r.Elapsed)
	fmt.Fprintf(w, "Arrivals             : %d\n", r.Arrivals)
	fmt.Fprintf(w, "Completed            : %d\n", r.Completed)
	if r.CapacityBounded {
		fmt.Fprintf(w, "Rejected             : %d (%.2f%%)\n", r.Rejected, 100*r.ProbRejection)
	}
	if r.Balked > 0 {
		fmt.Fprintf(w, "Balked               : %d\n", r.Balked)
	}
	if r.Evicted > 0 {
		fmt.Fprintf(w, "Evicted              : %d\n", r.Evicted)
	}
	fmt.Fprintf(w, "Still In System      : %d\n", r.InSystem)
	fmt.Fprintf(w, "Average Wait         : %.2f min\n", 60*r.AvgWaitingTime)
	fmt.Fprintf(w, "Maximum Wait         : %.2f min\n", 60*r.MaxWaitingTime)
	fmt.Fprintf(w, "Average Sojourn      : %.2f min\n", 60*r.AvgSojournTime)
	fmt.Fprintf(w, "Average Line Length  : %.4f\n", r.AvgQueueLength)
	fmt.Fprintf(w, "Maximum Line Length  : %d\n", r.MaxQueueLength)
	fmt.Fprintf(w, "Utilization          : %.2f%%\n", 100*r.Utilization)
	fmt.Fprintf(w, "P(all servers busy)  : %.4f\n", r.ProbAllBusy)
	fmt.Fprintf(w, "P(line empty)        : %.4f\n", r.ProbEmptyQueue)
	if r.CapacityBounded {
		fmt.Fprintf(w, "P(line full)         : %.4f\n", r.ProbFull)
	}
}

func printPeriods(w io.Writer, periods []sim.PeriodResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHIFT\tHOURS\tSERVERS\tCOMPLETED\tAVG WAIT (min)\tAVG LINE\tUTIL\tP(ALL BUSY)")
	for i, p := range periods {
		fmt.Fprintf(tw, "%d\t%g-%g\t%d\t%d\t%.2f\t%.4f\t%.2f%%\t%.4f\n",
			i, p.Start, p.End, p.Servers, p.Completed, 60*p.AvgWaitingTime, p.AvgQueueLength, 100*p.Utilization, p.ProbAllBusy)
	}
	_ = tw.Flush()
}

func printReplications(w io.Writer, reps []replication) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSEED\tCOMPLETED\tAVG WAIT (min)\tAVG LINE\tUTIL")
	for _, rep := range reps {
		r := rep.Result
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.4f\t%.2f%%\n",
			rep.Run, rep.Seed, r.Completed, 60*r.AvgWaitingTime, r.AvgQueueLength, 100*r.Utilization)
	}
	_ = tw.Flush()
}

// analyticReference solves the steady-state model matching sc. Only a single
// constant server without balking has one: M/M/1, or M/M/1/K when the
// scenario has a capacity. applies is false when no model fits.
func analyticReference(sc *sim.Scenario) (est *analytic.Estimate, applies bool, err error) {
	schedule, err := sc.Schedule()
	if err != nil || schedule.MaxServers() != 1 || sc.MaxWait != nil {
		return nil, false, nil
	}
	if sc.Capacity == nil {
		est, err = analytic.MM1(sc.ArrivalRate, sc.ServiceRate)
		return est, true, err
	}
	k := *sc.Capacity
	if !sc.CapacityIncludesService {
		k++
	}
	est, err = analytic.MM1K(sc.ArrivalRate, sc.ServiceRate, k)
	return est, true, err
}

func printTheory(w io.Writer, r *sim.Result, est *analytic.Estimate, err error) {
	if err != nil {
		fmt.Fprintf(w, "Theoretical values   : %v\n", err)
		return
	}
	if est.K > 0 {
		fmt.Fprintf(w, "Theoretical values (%s, K=%d):\n", est.Model, est.K)
	} else {
		fmt.Fprintf(w, "Theoretical values (%s):\n", est.Model)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MEASURE\tSIMULATED\tTHEORETICAL")
	fmt.Fprintf(tw, "Average Wait (min)\t%.2f\t%.2f\n", 60*r.AvgWaitingTime, 60*est.AvgWaitingTime)
	fmt.Fprintf(tw, "Average Sojourn (min)\t%.2f\t%.2f\n", 60*r.AvgSojournTime, 60*est.AvgSojournTime)
	fmt.Fprintf(tw, "Average Line Length\t%.4f\t%.4f\n", r.AvgQueueLength, est.AvgQueueLength)
	fmt.Fprintf(tw, "Utilization\t%.2f%%\t%.2f%%\n", 100*r.Utilization, 100*est.Utilization)
	fmt.Fprintf(tw, "P(line empty)\t%.4f\t%.4f\n", r.ProbEmptyQueue, est.ProbEmptyQueue)
	if est.K > 0 {
		fmt.Fprintf(tw, "P(line full)\t%.4f\t%.4f\n", r.ProbFull, est.ProbFull)
	}
	_ = tw.Flush()
}
