package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerPool_FindIdle_LowestActiveSlot(t *testing.T) {
	// GIVEN a pool of 3 with slot 0 busy
	p := NewServerPool(3)
	p.Assign(0, newCustomer(0, 0), 0, 1)

	// THEN the lowest idle slot below the active count is chosen
	assert.Equal(t, 1, p.FindIdle(3))
	assert.Equal(t, -1, p.FindIdle(1))
	assert.Equal(t, -1, p.FindIdle(0))
	assert.Equal(t, 1, p.FindIdle(10))
}

func TestServerPool_Assign_SetsServiceFields(t *testing.T) {
	// GIVEN an idle pool
	p := NewServerPool(2)
	c := newCustomer(7, 1)

	// WHEN a customer starts a 0.25h service at 1.5
	p.Assign(1, c, 1.5, 0.25)

	// THEN slot and customer agree
	slot := p.Slot(1)
	assert.True(t, slot.Busy)
	assert.Same(t, c, slot.Current)
	assert.Equal(t, 1.75, slot.BusyUntil)
	assert.Equal(t, 1.75, c.DepartureTime)
	assert.Equal(t, 1.5, c.ServiceStartTime)
	assert.Equal(t, 1, c.Server)
	assert.True(t, c.Served)
	assert.Equal(t, StateInService, c.State)
	assert.Equal(t, 1, p.BusyCount())
}

func TestServerPool_Assign_BusySlot_Panics(t *testing.T) {
	p := NewServerPool(1)
	p.Assign(0, newCustomer(0, 0), 0, 1)
	assert.Panics(t, func() { p.Assign(0, newCustomer(1, 0), 0, 1) })
}

func TestServerPool_Assign_ServedCustomer_Panics(t *testing.T) {
	p := NewServerPool(2)
	c := newCustomer(0, 0)
	p.Assign(0, c, 0, 1)
	assert.Panics(t, func() { p.Assign(1, c, 0, 1) })
}

func TestServerPool_Release_IdleSlot_Panics(t *testing.T) {
	assert.Panics(t, func() { NewServerPool(1).Release(0) })
}

func TestNewServerPool_Empty_Panics(t *testing.T) {
	assert.Panics(t, func() { NewServerPool(0) })
}

func TestServerPool_NextDeparture(t *testing.T) {
	// GIVEN an idle pool
	p := NewServerPool(3)

	// THEN no departure is pending
	at, slot := p.NextDeparture()
	assert.True(t, math.IsInf(at, 1))
	assert.Equal(t, -1, slot)

	// WHEN slots 1 and 2 finish at the same time and slot 0 later
	p.Assign(0, newCustomer(0, 0), 0, 3)
	p.Assign(1, newCustomer(1, 0), 0, 2)
	p.Assign(2, newCustomer(2, 0), 0, 2)

	// THEN the earliest wins and ties go to the lowest index
	at, slot = p.NextDeparture()
	assert.Equal(t, 2.0, at)
	assert.Equal(t, 1, slot)
}

func TestServerPool_Evict_ReleasesSlotsAboveActiveInOrder(t *testing.T) {
	// GIVEN four busy slots
	p := NewServerPool(4)
	for i := 0; i < 4; i++ {
		p.Assign(i, newCustomer(int64(i), 0), 0, 5)
	}

	// WHEN the active count drops to 2
	evicted := p.Evict(2)

	// THEN slots 2 and 3 are released in slot order
	require.Len(t, evicted, 2)
	assert.Equal(t, int64(2), evicted[0].ID)
	assert.Equal(t, int64(3), evicted[1].ID)
	assert.Equal(t, 2, p.BusyCount())
	assert.False(t, p.Slot(3).Busy)
	assert.Empty(t, p.Evict(2))
}
