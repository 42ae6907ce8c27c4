package sim

import "fmt"

// EvictionPolicy decides what happens to the unfinished service of a
// customer whose slot is switched off by the shift schedule.
type EvictionPolicy interface {
	// Interrupt is called when c is pulled off its slot at now.
	// It must leave c with Served == false.
	Interrupt(c *Customer, now float64)
	// Duration returns the service duration for c's next service attempt.
	// draw produces a fresh service time.
	Duration(c *Customer, draw func() float64) float64
}

// RedrawService discards the interrupted service. The customer receives a
// fresh service draw when it is next assigned.
type RedrawService struct{}

func (RedrawService) Interrupt(c *Customer, _ float64) {
	resetService(c)
}

func (RedrawService) Duration(_ *Customer, draw func() float64) float64 {
	return draw()
}

// ResumeService keeps the unfinished part of the interrupted service and
// uses it as the duration of the next service attempt.
type ResumeService struct{}

func (ResumeService) Interrupt(c *Customer, now float64) {
	c.remaining = max(c.DepartureTime-now, 0)
	resetService(c)
}

func (ResumeService) Duration(c *Customer, draw func() float64) float64 {
	if c.remaining > 0 {
		d := c.remaining
		c.remaining = 0
		return d
	}
	return draw()
}

func resetService(c *Customer) {
	c.ServiceStartTime = 0
	c.ServiceTime = 0
	c.DepartureTime = 0
	c.Served = false
	c.Server = NoServer
}

// ValidEvictionPolicies is the set of recognized eviction policy names.
var ValidEvictionPolicies = map[string]bool{"": true, "redraw": true, "resume": true}

// IsValidEvictionPolicy returns true if name is a recognized eviction policy.
func IsValidEvictionPolicy(name string) bool {
	return ValidEvictionPolicies[name]
}

// NewEvictionPolicy creates an eviction policy by name.
// An empty string defaults to RedrawService.
// Panics on unrecognized names.
func NewEvictionPolicy(name string) EvictionPolicy {
	if !IsValidEvictionPolicy(name) {
		panic(fmt.Sprintf("unknown eviction policy %q", name))
	}
	switch name {
	case "", "redraw":
		return RedrawService{}
	case "resume":
		return ResumeService{}
	default:
		panic(fmt.Sprintf("unhandled eviction policy %q", name))
	}
}
