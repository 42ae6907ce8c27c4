package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAdmissionPolicy(t *testing.T) {
	assert.Equal(t, AlwaysAdmit{}, NewAdmissionPolicy(nil, false))
	assert.Equal(t, AlwaysAdmit{}, NewAdmissionPolicy(nil, true))
	assert.Equal(t, LineCapacity{Capacity: 5}, NewAdmissionPolicy(Ptr(5), false))
	assert.Equal(t, SystemCapacity{Capacity: 5}, NewAdmissionPolicy(Ptr(5), true))
}

func TestAdmissionPolicy_LineLimit(t *testing.T) {
	tests := []struct {
		name   string
		policy AdmissionPolicy
		busy   int
		want   int
	}{
		{"unbounded", AlwaysAdmit{}, 3, Unbounded},
		{"line capacity ignores servers", LineCapacity{Capacity: 5}, 3, 5},
		{"system capacity subtracts busy servers", SystemCapacity{Capacity: 5}, 3, 2},
		{"system capacity never negative", SystemCapacity{Capacity: 2}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.LineLimit(tt.busy))
		})
	}
}

func TestAtCapacity(t *testing.T) {
	assert.False(t, atCapacity(AlwaysAdmit{}, 1000, 1))
	assert.True(t, atCapacity(LineCapacity{Capacity: 2}, 2, 0))
	assert.False(t, atCapacity(LineCapacity{Capacity: 2}, 1, 5))
	assert.True(t, atCapacity(SystemCapacity{Capacity: 2}, 0, 2))
}

func TestRedrawService_DiscardsInterruptedService(t *testing.T) {
	// GIVEN a customer evicted 1h into a 3h service
	c := servedCustomer(0, 0, 0, 3)
	c.Server = 2
	var p RedrawService

	// WHEN interrupted and re-dispatched
	p.Interrupt(c, 1)
	d := p.Duration(c, func() float64 { return 0.7 })

	// THEN the service fields are cleared and a fresh draw is used
	assert.False(t, c.Served)
	assert.Equal(t, NoServer, c.Server)
	assert.Zero(t, c.DepartureTime)
	assert.Equal(t, 0.7, d)
}

func TestResumeService_KeepsRemainingService(t *testing.T) {
	// GIVEN a customer evicted 1h into a 3h service
	c := servedCustomer(0, 0, 0, 3)
	var p ResumeService
	drew := false
	draw := func() float64 { drew = true; return 0.7 }

	// WHEN interrupted and re-dispatched
	p.Interrupt(c, 1)
	d := p.Duration(c, draw)

	// THEN the remaining 2h are served without a new draw
	assert.False(t, c.Served)
	assert.Equal(t, 2.0, d)
	assert.False(t, drew)

	// AND the next attempt draws normally
	assert.Equal(t, 0.7, p.Duration(c, draw))
}

func TestNewEvictionPolicy(t *testing.T) {
	assert.Equal(t, RedrawService{}, NewEvictionPolicy(""))
	assert.Equal(t, RedrawService{}, NewEvictionPolicy("redraw"))
	assert.Equal(t, ResumeService{}, NewEvictionPolicy("resume"))
	assert.Panics(t, func() { NewEvictionPolicy("drop") })
	assert.False(t, IsValidEvictionPolicy("drop"))
}
