// Tracks run-wide and per-shift statistics such as:
// time-weighted line length, all-busy time, full-line time, empty-line time,
// and per-customer waiting and sojourn sums.

package sim

import (
	"fmt"
	"math"
)

// IntervalState is the system state that held during an integrated interval,
// i.e. the state as of the previous event.
type IntervalState struct {
	QueueLength int  // customers in the waiting line
	Busy        int  // busy server slots
	Active      int  // enabled server slots
	AtCapacity  bool // the line was full (capacity-bounded runs only)
	Period      int  // schedule shift the interval started in
}

// PeriodAccumulator holds the per-shift share of the run statistics.
type PeriodAccumulator struct {
	QueueLengthTimeProduct float64
	AllBusyTime            float64
	WaitSum                float64
	SojournSum             float64
	BusySum                float64
	Completed              int
}

// Accumulator aggregates statistics over one run. It is updated at every
// event boundary and every completion, and read exactly once by Finalize.
type Accumulator struct {
	QueueLengthTimeProduct float64 // ∫ line length dt
	AllBusyTime            float64 // time with every active server busy
	FullSystemTime         float64 // time with the line at capacity
	EmptyQueueTime         float64 // time with an empty line

	WaitSum    float64 // Σ (service start - arrival)
	SojournSum float64 // Σ (departure - arrival)
	BusySum    float64 // Σ service time of completed customers
	MaxWait    float64 // largest completed wait

	Arrivals       int
	Completed      int
	Rejected       int
	Balked         int
	Evicted        int
	MaxQueueLength int

	Periods []PeriodAccumulator

	finalized bool
}

// NewAccumulator creates an Accumulator with one period slot per shift.
func NewAccumulator(periods int) *Accumulator {
	return &Accumulator{Periods: make([]PeriodAccumulator, max(periods, 1))}
}

func (a *Accumulator) mutable() {
	if a.finalized {
		panic("Accumulator: already finalized")
	}
}

// Integrate adds interval hours spent in state s.
// Panics on a negative interval.
func (a *Accumulator) Integrate(interval float64, s IntervalState) {
	a.mutable()
	if interval < 0 || math.IsNaN(interval) {
		panic(fmt.Sprintf("Integrate: negative interval %v", interval))
	}
	p := &a.Periods[s.Period]
	a.QueueLengthTimeProduct += float64(s.QueueLength) * interval
	p.QueueLengthTimeProduct += float64(s.QueueLength) * interval
	if s.Active > 0 && s.Busy >= s.Active {
		a.AllBusyTime += interval
		p.AllBusyTime += interval
	}
	if s.AtCapacity {
		a.FullSystemTime += interval
	}
	if s.QueueLength == 0 {
		a.EmptyQueueTime += interval
	}
}

// RecordCompletion folds a departed customer into the sums. period is the
// shift containing the departure time.
func (a *Accumulator) RecordCompletion(c *Customer, period int) {
	a.mutable()
	wait, sojourn := c.Wait(), c.Sojourn()
	a.WaitSum += wait
	a.SojournSum += sojourn
	a.BusySum += c.ServiceTime
	a.MaxWait = max(a.MaxWait, wait)
	a.Completed++

	p := &a.Periods[period]
	p.WaitSum += wait
	p.SojournSum += sojourn
	p.BusySum += c.ServiceTime
	p.Completed++
}

// ObserveQueueLength tracks the maximum line length.
func (a *Accumulator) ObserveQueueLength(n int) {
	a.mutable()
	a.MaxQueueLength = max(a.MaxQueueLength, n)
}

// RecordArrival counts an arrival event.
func (a *Accumulator) RecordArrival() {
	a.mutable()
	a.Arrivals++
}

// RecordRejection counts a customer turned away by the capacity bound, either
// on arrival or when an eviction overflows the line.
func (a *Accumulator) RecordRejection() {
	a.mutable()
	a.Rejected++
}

// RecordBalk counts a customer who left the line unserved.
func (a *Accumulator) RecordBalk() {
	a.mutable()
	a.Balked++
}

// RecordEviction counts a service interrupted by the shift schedule.
func (a *Accumulator) RecordEviction() {
	a.mutable()
	a.Evicted++
}

// PeriodResult is the per-shift breakdown of a run.
// Averages are zero when Completed is zero.
type PeriodResult struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Servers        int     `json:"servers"`
	AvgWaitingTime float64 `json:"avg_waiting_time"`
	AvgSojournTime float64 `json:"avg_sojourn_time"`
	Utilization    float64 `json:"utilization"`
	AvgQueueLength float64 `json:"avg_queue_length"`
	ProbAllBusy    float64 `json:"prob_all_busy"`
	Completed      int     `json:"completed"`
}

// Result is the finalized, read-only statistics record of a run.
type Result struct {
	AvgWaitingTime  float64 `json:"avg_waiting_time"`
	AvgSojournTime  float64 `json:"avg_sojourn_time"`
	MaxWaitingTime  float64 `json:"max_waiting_time"`
	Utilization     float64 `json:"utilization"`
	IdleFraction    float64 `json:"idle_fraction"`
	AvgQueueLength  float64 `json:"avg_queue_length"`
	MaxQueueLength  int     `json:"max_queue_length"`
	ProbAllBusy     float64 `json:"prob_all_busy"`
	CapacityBounded bool    `json:"capacity_bounded"`
	ProbFull        float64 `json:"prob_full"`
	ProbEmptyQueue  float64 `json:"prob_empty_queue"`
	ProbRejection   float64 `json:"prob_rejection"`

	Arrivals  int `json:"arrivals"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Balked    int `json:"balked"`
	Evicted   int `json:"evicted"`
	InSystem  int `json:"in_system"`

	Elapsed     float64 `json:"elapsed"`
	ServerHours float64 `json:"server_hours"`
	Runs        int     `json:"runs"`

	Periods []PeriodResult `json:"periods,omitempty"`
}

// Finalize reduces the accumulator to a Result. elapsed is the simulated
// time covered by the run. It fails with ErrInsufficientData if nobody
// completed service or no time elapsed. The accumulator is frozen afterwards.
func (a *Accumulator) Finalize(elapsed float64, schedule Schedule, capacityBounded bool, inSystem int) (*Result, error) {
	a.mutable()
	a.finalized = true
	if !(elapsed > 0) {
		return nil, fmt.Errorf("%w: no simulated time elapsed", ErrInsufficientData)
	}
	if a.Completed == 0 {
		return nil, fmt.Errorf("%w: no customer completed service in %.6f hours", ErrInsufficientData, elapsed)
	}
	serverHours := schedule.ServerHours(elapsed)
	completed := float64(a.Completed)
	r := &Result{
		AvgWaitingTime:  a.WaitSum / completed,
		AvgSojournTime:  a.SojournSum / completed,
		MaxWaitingTime:  a.MaxWait,
		Utilization:     a.BusySum / serverHours,
		AvgQueueLength:  a.QueueLengthTimeProduct / elapsed,
		MaxQueueLength:  a.MaxQueueLength,
		ProbAllBusy:     a.AllBusyTime / elapsed,
		CapacityBounded: capacityBounded,
		ProbEmptyQueue:  a.EmptyQueueTime / elapsed,
		Arrivals:        a.Arrivals,
		Completed:       a.Completed,
		Rejected:        a.Rejected,
		Balked:          a.Balked,
		Evicted:         a.Evicted,
		InSystem:        inSystem,
		Elapsed:         elapsed,
		ServerHours:     serverHours,
		Runs:            1,
	}
	r.IdleFraction = 1 - r.Utilization
	if capacityBounded {
		r.ProbFull = a.FullSystemTime / elapsed
	}
	if a.Arrivals > 0 {
		r.ProbRejection = float64(a.Rejected) / float64(a.Arrivals)
	}
	if len(schedule.shifts) > 1 {
		r.Periods = a.finalizePeriods(elapsed, schedule)
	}
	return r, nil
}

func (a *Accumulator) finalizePeriods(elapsed float64, schedule Schedule) []PeriodResult {
	out := make([]PeriodResult, 0, len(a.Periods))
	for i, p := range a.Periods {
		start, stop := schedule.PeriodBounds(i, elapsed)
		pr := PeriodResult{
			Start:     start,
			End:       stop,
			Servers:   schedule.shifts[i].Servers,
			Completed: p.Completed,
		}
		if d := stop - start; d > 0 {
			pr.Utilization = p.BusySum / (d * float64(pr.Servers))
			pr.AvgQueueLength = p.QueueLengthTimeProduct / d
			pr.ProbAllBusy = p.AllBusyTime / d
		}
		if p.Completed > 0 {
			pr.AvgWaitingTime = p.WaitSum / float64(p.Completed)
			pr.AvgSojournTime = p.SojournSum / float64(p.Completed)
		}
		out = append(out, pr)
	}
	return out
}
