package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents   int
	Arrivals      int
	Departures    int
	Rejections    int
	Balks         int
	Evictions     int
	MaxLineLength int
	// Monotonic is false if any event time precedes the one before it.
	Monotonic bool
	// ServerDepartures counts departures per slot.
	ServerDepartures map[int]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields, Monotonic true).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Monotonic:        true,
		ServerDepartures: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for i, e := range st.Events {
		switch e.Kind {
		case EventArrival:
			summary.Arrivals++
		case EventDeparture:
			summary.Departures++
			summary.ServerDepartures[e.Server]++
		}
		if e.LineLength > summary.MaxLineLength {
			summary.MaxLineLength = e.LineLength
		}
		if i > 0 && e.Time < st.Events[i-1].Time {
			summary.Monotonic = false
		}
	}

	for _, o := range st.Outcomes {
		switch o.Outcome {
		case OutcomeRejected:
			summary.Rejections++
		case OutcomeBalked:
			summary.Balks++
		case OutcomeEvicted:
			summary.Evictions++
		}
	}

	return summary
}
