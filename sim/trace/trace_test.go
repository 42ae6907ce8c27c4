package trace

import (
	"testing"
)

func TestSimulationTrace_RecordEvent_NumbersInOrder(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN two event records are recorded
	st.RecordEvent(EventRecord{Kind: EventArrival, Time: 1, Server: -1})
	st.RecordEvent(EventRecord{Kind: EventDeparture, Time: 2, Server: 0, Seq: 99})

	// THEN they are kept in order and numbered by position
	if len(st.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(st.Events))
	}
	for i, e := range st.Events {
		if e.Seq != i {
			t.Errorf("event %d: expected seq %d, got %d", i, i, e.Seq)
		}
	}
	if st.Events[1].Kind != EventDeparture {
		t.Errorf("expected departure second, got %s", st.Events[1].Kind)
	}
}

func TestSimulationTrace_RecordOutcome_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN an eviction is recorded
	st.RecordOutcome(OutcomeRecord{CustomerID: 4, Time: 5.1, Outcome: OutcomeEvicted, Server: 1})

	// THEN the trace contains it unchanged
	if len(st.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(st.Outcomes))
	}
	if got := st.Outcomes[0]; got.CustomerID != 4 || got.Server != 1 || got.Outcome != OutcomeEvicted {
		t.Errorf("unexpected outcome record %+v", got)
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must report disabled")
	}
	if NewSimulationTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must report disabled")
	}
	if !NewSimulationTrace(TraceConfig{Level: TraceLevelEvents}).Enabled() {
		t.Error("level events must report enabled")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	for _, level := range []string{"", "none", "events"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("decisions") {
		t.Error("expected unknown level to be invalid")
	}
}
