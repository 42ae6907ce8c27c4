package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/counter-sim/counter-sim/sim"
	"github.com/counter-sim/counter-sim/sim/record"
	"github.com/counter-sim/counter-sim/sim/trace"
)

// replication is one independent run of a scenario.
type replication struct {
	Run     int                    `json:"run"`
	Seed    int64                  `json:"seed"`
	RunID   string                 `json:"run_id,omitempty"`
	Result  *sim.Result            `json:"result"`
	Summary *trace.TraceSummary    `json:"trace,omitempty"`
	Trace   *trace.SimulationTrace `json:"-"`
}

// replicate performs opts.Runs independent runs of sc, each with its own
// random stream derived from opts.Seed, and averages the usable results.
// Runs that end without statistics are skipped with a warning.
func replicate(sc *sim.Scenario, opts runOptions, rec *record.Recorder) ([]replication, *sim.Result, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed))
	reps := make([]replication, 0, opts.Runs)
	results := make([]*sim.Result, 0, opts.Runs)

	for i := 0; i < opts.Runs; i++ {
		name := sim.SubsystemRun(i)
		cfg, err := sc.Config(rng.ForSubsystem(name))
		if err != nil {
			return nil, nil, err
		}
		s, err := sim.NewSimulator(cfg)
		if err != nil {
			return nil, nil, err
		}
		if opts.Trace == trace.TraceLevelEvents {
			s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: opts.Trace})
		}

		res, err := s.Run()
		if errors.Is(err, sim.ErrInsufficientData) {
			logrus.Warnf("run %d skipped: %v", i, err)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("run %d: %w", i, err)
		}

		rep := replication{Run: i, Seed: rng.SeedFor(name), Result: res, Trace: s.Trace}
		if s.Trace.Enabled() {
			rep.Summary = trace.Summarize(s.Trace)
		}
		if rec != nil {
			id, err := rec.RecordRun(scenarioLabel(sc), i, rep.Seed, res)
			if err != nil {
				return nil, nil, err
			}
			rep.RunID = id
		}
		reps = append(reps, rep)
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, nil, fmt.Errorf("%w: all %d runs ended without statistics", sim.ErrInsufficientData, opts.Runs)
	}
	avg, err := sim.Average(results)
	if err != nil {
		return nil, nil, err
	}
	return reps, avg, nil
}

// openRecorder opens the results database, or returns nil when path is empty.
// The database is closed on logrus.Fatal as well as on normal return.
func openRecorder(path string) *record.Recorder {
	if path == "" {
		return nil
	}
	rec, err := record.Open(path)
	if err != nil {
		logrus.Fatalf("Opening results database: %v", err)
	}
	logrus.RegisterExitHandler(func() { _ = rec.Close() })
	return rec
}

func scenarioLabel(sc *sim.Scenario) string {
	if sc.Name != "" {
		return sc.Name
	}
	return "custom"
}
