// sim/metrics_utils.go
package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Average folds finalized results of independent runs into their arithmetic
// mean. Counters are averaged and rounded; MaxQueueLength and MaxWaitingTime
// take the maximum across runs. Period breakdowns are averaged element-wise
// when every run reports the same number of periods.
func Average(results []*Result) (*Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results to average", ErrInsufficientData)
	}
	mean := func(f func(*Result) float64) float64 {
		xs := make([]float64, len(results))
		for i, r := range results {
			xs[i] = f(r)
		}
		return stat.Mean(xs, nil)
	}
	count := func(f func(*Result) int) int {
		return int(math.Round(mean(func(r *Result) float64 { return float64(f(r)) })))
	}

	avg := &Result{
		AvgWaitingTime:  mean(func(r *Result) float64 { return r.AvgWaitingTime }),
		AvgSojournTime:  mean(func(r *Result) float64 { return r.AvgSojournTime }),
		Utilization:     mean(func(r *Result) float64 { return r.Utilization }),
		IdleFraction:    mean(func(r *Result) float64 { return r.IdleFraction }),
		AvgQueueLength:  mean(func(r *Result) float64 { return r.AvgQueueLength }),
		ProbAllBusy:     mean(func(r *Result) float64 { return r.ProbAllBusy }),
		CapacityBounded: results[0].CapacityBounded,
		ProbFull:        mean(func(r *Result) float64 { return r.ProbFull }),
		ProbEmptyQueue:  mean(func(r *Result) float64 { return r.ProbEmptyQueue }),
		ProbRejection:   mean(func(r *Result) float64 { return r.ProbRejection }),
		Arrivals:        count(func(r *Result) int { return r.Arrivals }),
		Completed:       count(func(r *Result) int { return r.Completed }),
		Rejected:        count(func(r *Result) int { return r.Rejected }),
		Balked:          count(func(r *Result) int { return r.Balked }),
		Evicted:         count(func(r *Result) int { return r.Evicted }),
		InSystem:        count(func(r *Result) int { return r.InSystem }),
		Elapsed:         mean(func(r *Result) float64 { return r.Elapsed }),
		ServerHours:     mean(func(r *Result) float64 { return r.ServerHours }),
	}
	for _, r := range results {
		avg.MaxQueueLength = max(avg.MaxQueueLength, r.MaxQueueLength)
		avg.MaxWaitingTime = max(avg.MaxWaitingTime, r.MaxWaitingTime)
		avg.Runs += max(r.Runs, 1)
	}
	avg.Periods = averagePeriods(results)
	return avg, nil
}

func averagePeriods(results []*Result) []PeriodResult {
	n := len(results[0].Periods)
	if n == 0 {
		return nil
	}
	for _, r := range results[1:] {
		if len(r.Periods) != n {
			return nil
		}
	}
	out := make([]PeriodResult, n)
	xs := make([]float64, len(results))
	mean := func(i int, f func(PeriodResult) float64) float64 {
		for j, r := range results {
			xs[j] = f(r.Periods[i])
		}
		return stat.Mean(xs, nil)
	}
	for i := range out {
		first := results[0].Periods[i]
		out[i] = PeriodResult{
			Start:          first.Start,
			End:            mean(i, func(p PeriodResult) float64 { return p.End }),
			Servers:        first.Servers,
			AvgWaitingTime: mean(i, func(p PeriodResult) float64 { return p.AvgWaitingTime }),
			AvgSojournTime: mean(i, func(p PeriodResult) float64 { return p.AvgSojournTime }),
			Utilization:    mean(i, func(p PeriodResult) float64 { return p.Utilization }),
			AvgQueueLength: mean(i, func(p PeriodResult) float64 { return p.AvgQueueLength }),
			ProbAllBusy:    mean(i, func(p PeriodResult) float64 { return p.ProbAllBusy }),
			Completed:      int(math.Round(mean(i, func(p PeriodResult) float64 { return float64(p.Completed) }))),
		}
	}
	return out
}
