package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/counter-sim/counter-sim/sim/trace"
)

// scriptedSource replays fixed draws per rate. Once a stream is exhausted
// its last value repeats. Tests give arrivals and service distinct rates so
// the two streams stay separate.
type scriptedSource struct {
	streams map[float64][]float64
	pos     map[float64]int
}

func newScriptedSource(streams map[float64][]float64) *scriptedSource {
	return &scriptedSource{streams: streams, pos: make(map[float64]int)}
}

func (s *scriptedSource) Exponential(rate float64) float64 {
	vals, ok := s.streams[rate]
	if !ok || len(vals) == 0 {
		panic(fmt.Sprintf("scriptedSource: no stream for rate %v", rate))
	}
	i := min(s.pos[rate], len(vals)-1)
	s.pos[rate]++
	return vals[i]
}

// draws returns how many values were taken from the rate's stream.
func (s *scriptedSource) draws(rate float64) int {
	return s.pos[rate]
}

const (
	testArrivalRate = 1.0
	testServiceRate = 2.0
)

// scriptedConfig returns a one-server config that replays arrivals and
// services as interarrival and service durations.
func scriptedConfig(arrivals, services []float64) Config {
	return Config{
		ArrivalRate: testArrivalRate,
		ServiceRate: testServiceRate,
		Schedule:    ConstantSchedule(1),
		Source: newScriptedSource(map[float64][]float64{
			testArrivalRate: arrivals,
			testServiceRate: services,
		}),
	}
}

// mustRun runs cfg to completion with event tracing on.
func mustRun(t *testing.T, cfg Config) (*Simulator, *Result) {
	t.Helper()
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
	res, err := s.Run()
	require.NoError(t, err)
	require.NotNil(t, res)
	return s, res
}

// presetConfig builds the named preset with a seeded source.
func presetConfig(t *testing.T, name string, seed int64) Config {
	t.Helper()
	sc, ok := Preset(name)
	require.True(t, ok, "preset %q", name)
	cfg, err := sc.Config(NewSeededSource(seed))
	require.NoError(t, err)
	return cfg
}
