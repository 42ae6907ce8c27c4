// sim/simulator.go
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/counter-sim/counter-sim/sim/trace"
)

// Phase is the driver state of a run.
type Phase int

const (
	// PhaseRunning processes arrivals and departures.
	PhaseRunning Phase = iota
	// PhaseDraining processes only departures after the arrival limit was reached.
	PhaseDraining
	// PhaseStopped processes nothing further.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Simulator is the core object that holds simulation time, system state, and the event loop.
// A Simulator performs exactly one run; it is not safe for concurrent use.
type Simulator struct {
	Clock float64 // time of the last processed event (hours)
	// Trace, when enabled, receives one record per processed event.
	Trace *trace.SimulationTrace

	cfg         Config
	phase       Phase
	nextArrival float64
	nextID      int64

	pool      *ServerPool
	line      *WaitingLine
	stats     *Accumulator
	admission AdmissionPolicy
	eviction  EvictionPolicy

	completed []*Customer
	result    *Result
	err       error
}

// NewSimulator validates cfg and prepares a run. The first arrival is drawn here.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:       cfg,
		phase:     PhaseRunning,
		pool:      NewServerPool(cfg.Schedule.MaxServers()),
		line:      &WaitingLine{},
		stats:     NewAccumulator(len(cfg.Schedule.shifts)),
		admission: NewAdmissionPolicy(cfg.Capacity, cfg.CapacityIncludesService),
		eviction:  NewEvictionPolicy(cfg.Eviction),
	}
	s.nextArrival = cfg.Source.Exponential(cfg.ArrivalRate)
	return s, nil
}

// Phase returns the current driver state.
func (sim *Simulator) Phase() Phase {
	return sim.phase
}

// Completed returns the archive of departed customers in departure order.
// The returned slice is the simulator's storage; callers MUST NOT modify it.
func (sim *Simulator) Completed() []*Customer {
	return sim.completed
}

// Line returns the waiting line, for inspection.
func (sim *Simulator) Line() *WaitingLine {
	return sim.line
}

// Pool returns the server pool, for inspection.
func (sim *Simulator) Pool() *ServerPool {
	return sim.pool
}

// Run steps until the run stops and returns the finalized statistics.
// Calling Run again returns the same result.
func (sim *Simulator) Run() (*Result, error) {
	logrus.Infof("Starting run: λ=%v μ=%v shifts=%v capacity=%v max-wait=%v horizon=%v arrivals=%d",
		sim.cfg.ArrivalRate, sim.cfg.ServiceRate, sim.cfg.Schedule.shifts,
		deref(sim.cfg.Capacity), deref(sim.cfg.MaxWait), sim.cfg.Horizon, sim.cfg.ArrivalLimit)
	for sim.Step() {
	}
	return sim.result, sim.err
}

// Step processes one event. It returns false once the run has stopped.
func (sim *Simulator) Step() bool {
	if sim.phase == PhaseStopped {
		return false
	}
	ev := sim.selectNext()
	t := math.Inf(1)
	if ev != nil {
		t = ev.Timestamp()
	}

	if sim.cfg.Horizon > 0 && t > sim.cfg.Horizon {
		sim.integrate(sim.cfg.Horizon - sim.Clock)
		sim.Clock = sim.cfg.Horizon
		sim.stop()
		return false
	}
	if ev == nil {
		sim.stop()
		return false
	}

	// integrate against the pre-event state, then advance the clock
	pre := sim.integrate(t - sim.Clock)
	sim.Clock = t
	if sim.Trace.Enabled() {
		server := NoServer
		if d, ok := ev.(*DepartureEvent); ok {
			server = d.Server
		}
		sim.Trace.RecordEvent(trace.EventRecord{
			Kind:       ev.Kind(),
			Time:       t,
			Interval:   pre.interval,
			Server:     server,
			LineLength: pre.QueueLength,
			Busy:       pre.Busy,
			Active:     pre.Active,
			AtCapacity: pre.AtCapacity,
		})
	}
	logrus.Tracef("[t %.6f] Executing %T", sim.Clock, ev)

	ev.Execute(sim)
	sim.reconcileSchedule()
	sim.dispatch()
	sim.enforceCapacity()

	if sim.phase == PhaseRunning && sim.cfg.ArrivalLimit > 0 && sim.stats.Arrivals >= sim.cfg.ArrivalLimit {
		logrus.Debugf("[t %.6f] arrival limit %d reached, draining", sim.Clock, sim.cfg.ArrivalLimit)
		sim.phase = PhaseDraining
		sim.nextArrival = math.Inf(1)
	}
	return true
}

// selectNext picks the next event by time order without advancing the clock.
// An arrival wins only if it is strictly earlier than every departure;
// departure ties go to the lowest slot index. Returns nil if nothing is pending.
func (sim *Simulator) selectNext() Event {
	nextDeparture, slot := sim.pool.NextDeparture()
	if sim.nextArrival < nextDeparture {
		return &ArrivalEvent{time: sim.nextArrival}
	}
	if slot < 0 {
		return nil
	}
	return &DepartureEvent{time: nextDeparture, Server: slot}
}

type integrated struct {
	IntervalState
	interval float64
}

// integrate accumulates interval hours against the state as of the last event.
func (sim *Simulator) integrate(interval float64) integrated {
	busy := sim.pool.BusyCount()
	n := sim.line.Len()
	s := IntervalState{
		QueueLength: n,
		Busy:        busy,
		Active:      sim.cfg.Schedule.ActiveCount(sim.Clock),
		AtCapacity:  sim.cfg.Capacity != nil && atCapacity(sim.admission, n, busy),
		Period:      sim.cfg.Schedule.Period(sim.Clock),
	}
	sim.stats.Integrate(interval, s)
	return integrated{IntervalState: s, interval: interval}
}

// reconcileSchedule evicts customers from slots the schedule has switched off.
// Evicted customers return to the front of the line in slot order.
func (sim *Simulator) reconcileSchedule() {
	evicted := sim.pool.Evict(sim.cfg.Schedule.ActiveCount(sim.Clock))
	for i := len(evicted) - 1; i >= 0; i-- {
		c := evicted[i]
		slot := c.Server
		sim.eviction.Interrupt(c, sim.Clock)
		sim.line.PrependFront(c)
		sim.stats.RecordEviction()
		sim.recordOutcome(c, trace.OutcomeEvicted, slot)
		logrus.Debugf("   customer %d evicted from server %d at %.6f", c.ID, slot, sim.Clock)
	}
}

// dispatch fills idle enabled slots from the head of the line, lowest slot
// first, removing customers who waited past the balking threshold.
func (sim *Simulator) dispatch() {
	active := sim.cfg.Schedule.ActiveCount(sim.Clock)
	for {
		slot := sim.pool.FindIdle(active)
		if slot < 0 {
			return
		}
		c := sim.line.NextServable(sim.Clock, sim.cfg.MaxWait, sim.balk)
		if c == nil {
			return
		}
		sim.line.Dequeue()
		sim.startService(slot, c)
	}
}

// enforceCapacity turns away customers at the back of the line when
// evictions have pushed it past the admission limit. Only a line capacity
// can overflow this way; a system capacity sees the same total before and
// after an eviction.
func (sim *Simulator) enforceCapacity() {
	for _, c := range sim.line.TrimTo(sim.admission.LineLimit(sim.pool.BusyCount())) {
		sim.stats.RecordRejection()
		sim.recordOutcome(c, trace.OutcomeRejected, NoServer)
		logrus.Debugf("   customer %d rejected, line over capacity after eviction", c.ID)
	}
	sim.stats.ObserveQueueLength(sim.line.Len())
}

func (sim *Simulator) balk(c *Customer) {
	sim.stats.RecordBalk()
	sim.recordOutcome(c, trace.OutcomeBalked, NoServer)
	logrus.Debugf("   customer %d balked after waiting %.6f", c.ID, sim.Clock-c.ArrivalTime)
}

// startService assigns c to slot at the current time. The duration comes
// from the eviction policy, which draws a fresh one unless it carries over
// an interrupted service.
func (sim *Simulator) startService(slot int, c *Customer) {
	d := sim.eviction.Duration(c, func() float64 {
		return sim.cfg.Source.Exponential(sim.cfg.ServiceRate)
	})
	sim.pool.Assign(slot, c, sim.Clock, d)
}

func (sim *Simulator) scheduleArrival() {
	sim.nextArrival = sim.Clock + sim.cfg.Source.Exponential(sim.cfg.ArrivalRate)
}

func (sim *Simulator) recordOutcome(c *Customer, outcome trace.OutcomeKind, server int) {
	if !sim.Trace.Enabled() {
		return
	}
	sim.Trace.RecordOutcome(trace.OutcomeRecord{
		CustomerID: c.ID,
		Time:       sim.Clock,
		Outcome:    outcome,
		Server:     server,
	})
}

// inSystem counts customers still waiting or in service.
func (sim *Simulator) inSystem() int {
	return sim.line.Len() + sim.pool.BusyCount()
}

func (sim *Simulator) stop() {
	sim.phase = PhaseStopped
	sim.result, sim.err = sim.stats.Finalize(sim.Clock, sim.cfg.Schedule, sim.cfg.Capacity != nil, sim.inSystem())
	if sim.err != nil {
		logrus.Warnf("[t %.6f] Run ended without usable statistics: %v", sim.Clock, sim.err)
		return
	}
	logrus.Infof("[t %.6f] Run ended: %d arrivals, %d completed, %d rejected, %d balked, %d in system",
		sim.Clock, sim.result.Arrivals, sim.result.Completed, sim.result.Rejected, sim.result.Balked, sim.result.InSystem)
}

func deref[T any](p *T) any {
	if p == nil {
		return "none"
	}
	return *p
}
