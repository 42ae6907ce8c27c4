package sim

import (
	"fmt"
	"math"
)

// ServerSlot is one of the fixed slots of the counter.
// A slot is busy iff it owns a Current customer, and then BusyUntil
// equals that customer's DepartureTime.
type ServerSlot struct {
	Busy      bool
	BusyUntil float64
	Current   *Customer
}

// ServerPool holds the counter's server slots. Which slots accept new work
// is decided by the shift schedule; the pool itself only tracks occupancy.
type ServerPool struct {
	slots []ServerSlot
}

// NewServerPool creates a pool of size idle slots.
func NewServerPool(size int) *ServerPool {
	if size < 1 {
		panic(fmt.Sprintf("NewServerPool: size must be >= 1, got %d", size))
	}
	return &ServerPool{slots: make([]ServerSlot, size)}
}

// Size returns the number of slots, active or not.
func (p *ServerPool) Size() int {
	return len(p.slots)
}

// Slot returns a copy of slot i.
func (p *ServerPool) Slot(i int) ServerSlot {
	return p.slots[i]
}

// FindIdle returns the lowest-indexed idle slot below active, or -1.
func (p *ServerPool) FindIdle(active int) int {
	for i := 0; i < min(active, len(p.slots)); i++ {
		if !p.slots[i].Busy {
			return i
		}
	}
	return -1
}

// BusyCount returns the number of busy slots.
func (p *ServerPool) BusyCount() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].Busy {
			n++
		}
	}
	return n
}

// NextDeparture returns the earliest BusyUntil among busy slots and the slot
// holding it. Ties go to the lowest index. Returns (+Inf, -1) if all slots are idle.
func (p *ServerPool) NextDeparture() (float64, int) {
	next, slot := math.Inf(1), -1
	for i := range p.slots {
		if p.slots[i].Busy && p.slots[i].BusyUntil < next {
			next, slot = p.slots[i].BusyUntil, i
		}
	}
	return next, slot
}

// Assign starts serving c on slot for duration, beginning at now.
// Panics if the slot is busy or the customer already received a service draw.
func (p *ServerPool) Assign(slot int, c *Customer, now, duration float64) {
	s := &p.slots[slot]
	if s.Busy {
		panic(fmt.Sprintf("Assign: slot %d is already serving customer %d", slot, s.Current.ID))
	}
	if c.Served {
		panic(fmt.Sprintf("Assign: customer %d already in service", c.ID))
	}
	c.ServiceStartTime = now
	c.ServiceTime = duration
	c.DepartureTime = now + duration
	c.Server = slot
	c.Served = true
	c.State = StateInService

	s.Busy = true
	s.BusyUntil = c.DepartureTime
	s.Current = c
}

// Release marks slot idle and returns the customer it was serving.
// Panics if the slot was idle.
func (p *ServerPool) Release(slot int) *Customer {
	s := &p.slots[slot]
	if !s.Busy {
		panic(fmt.Sprintf("Release: slot %d is idle", slot))
	}
	c := s.Current
	*s = ServerSlot{}
	return c
}

// Evict releases every busy slot at or beyond active and returns the
// interrupted customers in slot order.
func (p *ServerPool) Evict(active int) []*Customer {
	var evicted []*Customer
	for i := max(active, 0); i < len(p.slots); i++ {
		if p.slots[i].Busy {
			evicted = append(evicted, p.Release(i))
		}
	}
	return evicted
}
