// Package trace provides per-event trace recording for a counter simulation run.
// It does not import package sim and holds only plain data types.
package trace

// EventKind names a processed simulation event.
type EventKind string

const (
	EventArrival   EventKind = "arrival"
	EventDeparture EventKind = "departure"
)

// EventRecord captures one processed event together with the state that held
// during the interval leading up to it.
type EventRecord struct {
	Seq        int
	Kind       EventKind
	Time       float64
	Interval   float64 // time since the previous event
	Server     int     // departing slot; -1 for arrivals
	LineLength int     // waiting line length before the event
	Busy       int     // busy slots before the event
	Active     int     // enabled slots before the event
	AtCapacity bool    // line was full before the event
}

// OutcomeKind names what happened to a customer outside normal service.
type OutcomeKind string

const (
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeBalked   OutcomeKind = "balked"
	OutcomeEvicted  OutcomeKind = "evicted"
)

// OutcomeRecord captures a rejection, balk or eviction.
type OutcomeRecord struct {
	CustomerID int64
	Time       float64
	Outcome    OutcomeKind
	Server     int // evicted-from slot; -1 otherwise
}
