package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counter-sim/counter-sim/sim"
)

func TestSweep_Servers_ReplacesShifts(t *testing.T) {
	// GIVEN the shifts preset
	base, _ := sim.Preset("shifts")
	var seen []*sim.Scenario

	// WHEN sweeping the server count from 1 to 3
	points, err := sweep(base, "servers", 1, 3, func(sc *sim.Scenario) (*sim.Result, error) {
		seen = append(seen, sc)
		return &sim.Result{Completed: sc.Servers}, nil
	})
	require.NoError(t, err)

	// THEN each point runs a constant schedule on its own copy
	require.Len(t, points, 3)
	for i, sc := range seen {
		assert.Equal(t, i+1, sc.Servers)
		assert.Nil(t, sc.Shifts)
		assert.Equal(t, i+1, points[i].Value)
	}
	assert.Len(t, base.Shifts, 3, "the base scenario must not change")
	assert.Equal(t, "shifts/servers=2", seen[1].Name)
}

func TestSweep_Capacity_MoreRoomFewerRejections(t *testing.T) {
	// GIVEN the capacity preset shortened to 200h
	base, _ := sim.Preset("capacity")
	base.Horizon = 200

	// WHEN sweeping capacity 1..6 with real runs
	points, err := sweep(base, "capacity", 1, 6, func(sc *sim.Scenario) (*sim.Result, error) {
		_, avg, err := replicate(sc, testOptions(42, 1), nil)
		return avg, err
	})
	require.NoError(t, err)

	// THEN the rejection probability falls from the smallest to the largest line
	require.Len(t, points, 6)
	assert.Greater(t, points[0].Result.ProbRejection, points[5].Result.ProbRejection)
	for _, p := range points {
		assert.LessOrEqual(t, p.Result.MaxQueueLength, p.Value)
	}
}

func TestSweep_InvalidInput(t *testing.T) {
	base, _ := sim.Preset("fixed")
	noop := func(*sim.Scenario) (*sim.Result, error) { return &sim.Result{}, nil }

	_, err := sweep(base, "servers", 0, 3, noop)
	assert.Error(t, err)
	_, err = sweep(base, "servers", 3, 2, noop)
	assert.Error(t, err)
	_, err = sweep(base, "rate", 1, 2, noop)
	assert.Error(t, err)
}

func TestWriteSweep_Table(t *testing.T) {
	points := []sweepPoint{
		{Value: 1, Result: &sim.Result{Utilization: 0.9}},
		{Value: 2, Result: &sim.Result{Utilization: 0.45, CapacityBounded: true, ProbFull: 0.01}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeSweep(&buf, "servers", points, "table"))
	out := buf.String()
	assert.Contains(t, out, "servers")
	assert.Contains(t, out, "90.00%")
	assert.Contains(t, out, "0.0100")
}
