package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/counter-sim/counter-sim/sim/trace"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in simulated hours) and an Execute method
// that mutates simulation state when invoked. Execute runs after the
// simulator has integrated the interval leading up to the event and
// advanced its clock.
type Event interface {
	Timestamp() float64
	Kind() trace.EventKind
	Execute(*Simulator)
}

// ArrivalEvent represents a new customer walking up to the counter.
type ArrivalEvent struct {
	time float64 // Simulation time of arrival (hours)
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Kind identifies the event as an arrival in traces.
func (e *ArrivalEvent) Kind() trace.EventKind {
	return trace.EventArrival
}

// Execute creates the customer, serves it immediately if the line is empty
// and a server is idle, otherwise applies the admission policy. The next
// arrival is drawn afterwards.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	sim.stats.RecordArrival()
	c := newCustomer(sim.nextID, e.time)
	sim.nextID++
	logrus.Debugf("<< Arrival: customer %d at %.6f", c.ID, e.time)

	busy := sim.pool.BusyCount()
	limit := sim.admission.LineLimit(busy)
	if sim.line.Len() == 0 && limit != 0 {
		if slot := sim.pool.FindIdle(sim.cfg.Schedule.ActiveCount(e.time)); slot >= 0 {
			sim.startService(slot, c)
			sim.scheduleArrival()
			return
		}
	}
	if sim.line.TryAdmit(c, limit) {
		sim.stats.ObserveQueueLength(sim.line.Len())
	} else {
		logrus.Debugf("   customer %d rejected, line at capacity (%d)", c.ID, sim.line.Len())
		sim.stats.RecordRejection()
		sim.recordOutcome(c, trace.OutcomeRejected, NoServer)
	}
	sim.scheduleArrival()
}

// DepartureEvent represents a customer finishing service on a slot.
type DepartureEvent struct {
	time   float64 // Scheduled completion time (hours)
	Server int     // Slot that completes
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 {
	return e.time
}

// Kind identifies the event as a departure in traces.
func (e *DepartureEvent) Kind() trace.EventKind {
	return trace.EventDeparture
}

// Execute releases the slot and archives the departing customer.
// Refilling the freed slot happens in the simulator's dispatch pass.
func (e *DepartureEvent) Execute(sim *Simulator) {
	c := sim.pool.Release(e.Server)
	c.State = StateCompleted
	sim.stats.RecordCompletion(c, sim.cfg.Schedule.Period(c.DepartureTime))
	sim.completed = append(sim.completed, c)
	logrus.Debugf("<< Departure: customer %d from server %d at %.6f (wait %.6f)", c.ID, e.Server, e.time, c.Wait())
}
