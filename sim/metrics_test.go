package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servedCustomer(id int64, arrival, start, service float64) *Customer {
	c := newCustomer(id, arrival)
	c.ServiceStartTime = start
	c.ServiceTime = service
	c.DepartureTime = start + service
	c.Served = true
	c.State = StateCompleted
	return c
}

func TestAccumulator_Integrate_TimeWeightedSums(t *testing.T) {
	// GIVEN an accumulator for a two-server, capacity-bounded run
	a := NewAccumulator(1)

	// WHEN integrating three intervals
	a.Integrate(1, IntervalState{QueueLength: 0, Busy: 1, Active: 2})
	a.Integrate(2, IntervalState{QueueLength: 3, Busy: 2, Active: 2, AtCapacity: true})
	a.Integrate(0.5, IntervalState{QueueLength: 1, Busy: 2, Active: 2})

	// THEN each sum accumulates only while its condition held
	assert.InDelta(t, 6.5, a.QueueLengthTimeProduct, 1e-12)
	assert.InDelta(t, 2.5, a.AllBusyTime, 1e-12)
	assert.InDelta(t, 2.0, a.FullSystemTime, 1e-12)
	assert.InDelta(t, 1.0, a.EmptyQueueTime, 1e-12)
	assert.InDelta(t, 6.5, a.Periods[0].QueueLengthTimeProduct, 1e-12)
}

func TestAccumulator_Integrate_ZeroActiveIsNotAllBusy(t *testing.T) {
	a := NewAccumulator(1)
	a.Integrate(1, IntervalState{Active: 0})
	assert.Zero(t, a.AllBusyTime)
}

func TestAccumulator_Integrate_NegativeInterval_Panics(t *testing.T) {
	a := NewAccumulator(1)
	assert.Panics(t, func() { a.Integrate(-0.1, IntervalState{}) })
}

func TestAccumulator_AfterFinalize_Panics(t *testing.T) {
	// GIVEN a finalized accumulator
	a := NewAccumulator(1)
	a.Integrate(1, IntervalState{})
	a.RecordCompletion(servedCustomer(0, 0, 0, 1), 0)
	_, err := a.Finalize(1, ConstantSchedule(1), false, 0)
	require.NoError(t, err)

	// THEN it is read-only
	assert.Panics(t, func() { a.RecordArrival() })
	assert.Panics(t, func() { a.Integrate(1, IntervalState{}) })
	assert.Panics(t, func() { _, _ = a.Finalize(1, ConstantSchedule(1), false, 0) })
}

func TestAccumulator_Finalize_Averages(t *testing.T) {
	// GIVEN two completions over a 4h, 2-server run
	a := NewAccumulator(1)
	a.Integrate(4, IntervalState{QueueLength: 1, Busy: 2, Active: 2})
	a.RecordArrival()
	a.RecordArrival()
	a.RecordArrival()
	a.RecordRejection()
	a.ObserveQueueLength(2)
	a.RecordCompletion(servedCustomer(0, 0, 0.5, 1), 0)
	a.RecordCompletion(servedCustomer(1, 1, 2.5, 3), 0)

	// WHEN finalized
	r, err := a.Finalize(4, ConstantSchedule(2), true, 0)
	require.NoError(t, err)

	// THEN averages divide by completions and elapsed time
	assert.InDelta(t, 1.0, r.AvgWaitingTime, 1e-12)
	assert.InDelta(t, 3.0, r.AvgSojournTime, 1e-12)
	assert.InDelta(t, 1.5, r.MaxWaitingTime, 1e-12)
	assert.InDelta(t, 0.5, r.Utilization, 1e-12)
	assert.InDelta(t, 0.5, r.IdleFraction, 1e-12)
	assert.InDelta(t, 1.0, r.AvgQueueLength, 1e-12)
	assert.InDelta(t, 1.0, r.ProbAllBusy, 1e-12)
	assert.InDelta(t, 1.0/3.0, r.ProbRejection, 1e-12)
	assert.Equal(t, 2, r.MaxQueueLength)
	assert.Equal(t, 1, r.Runs)
	assert.True(t, r.CapacityBounded)
	assert.Nil(t, r.Periods, "single-shift runs carry no period breakdown")
}

func TestAccumulator_Finalize_Degenerate(t *testing.T) {
	t.Run("no completions", func(t *testing.T) {
		a := NewAccumulator(1)
		a.Integrate(1, IntervalState{})
		_, err := a.Finalize(1, ConstantSchedule(1), false, 0)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
	t.Run("no elapsed time", func(t *testing.T) {
		a := NewAccumulator(1)
		a.RecordCompletion(servedCustomer(0, 0, 0, 0), 0)
		_, err := a.Finalize(0, ConstantSchedule(1), false, 0)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestAccumulator_Finalize_PerPeriod(t *testing.T) {
	// GIVEN a two-shift schedule and activity in each shift
	sched, err := NewSchedule([]Shift{{Start: 0, Servers: 1}, {Start: 2, Servers: 2}})
	require.NoError(t, err)
	a := NewAccumulator(2)
	a.Integrate(2, IntervalState{QueueLength: 1, Busy: 1, Active: 1, Period: 0})
	a.Integrate(2, IntervalState{QueueLength: 0, Busy: 1, Active: 2, Period: 1})
	a.RecordCompletion(servedCustomer(0, 0, 0, 1), 0)
	a.RecordCompletion(servedCustomer(1, 0.5, 1, 2), 1)

	// WHEN finalized at hour 4
	r, err := a.Finalize(4, sched, false, 0)
	require.NoError(t, err)

	// THEN each period reports over its own span and server count
	require.Len(t, r.Periods, 2)
	p0, p1 := r.Periods[0], r.Periods[1]
	assert.Equal(t, 0.0, p0.Start)
	assert.Equal(t, 2.0, p0.End)
	assert.InDelta(t, 0.5, p0.Utilization, 1e-12)
	assert.InDelta(t, 1.0, p0.AvgQueueLength, 1e-12)
	assert.InDelta(t, 1.0, p0.ProbAllBusy, 1e-12)
	assert.Equal(t, 1, p0.Completed)
	assert.Equal(t, 2, p1.Servers)
	assert.InDelta(t, 0.5, p1.Utilization, 1e-12)
	assert.Zero(t, p1.ProbAllBusy)
	assert.InDelta(t, 0.5, p1.AvgWaitingTime, 1e-12)
	assert.InDelta(t, 6.0, r.ServerHours, 1e-12)
}
