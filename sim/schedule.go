package sim

import (
	"fmt"
	"math"
)

// Shift is a schedule breakpoint: from Start (simulated hours) until the next
// shift begins, Servers slots accept work.
type Shift struct {
	Start   float64 `yaml:"start" json:"start"`
	Servers int     `yaml:"servers" json:"servers"`
}

// Schedule maps simulated time to the number of enabled server slots.
// It is a step function over ordered shifts and a pure function of time.
type Schedule struct {
	shifts []Shift
}

// ConstantSchedule returns a single-shift schedule with n servers.
func ConstantSchedule(n int) Schedule {
	return Schedule{shifts: []Shift{{Start: 0, Servers: n}}}
}

// NewSchedule validates shifts and builds a Schedule from them.
// The first shift must start at 0, starts must strictly increase and
// every shift needs at least one server.
func NewSchedule(shifts []Shift) (Schedule, error) {
	s := Schedule{shifts: append([]Shift(nil), shifts...)}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate reports whether the schedule is well-formed.
func (s Schedule) Validate() error {
	if len(s.shifts) == 0 {
		return fmt.Errorf("%w: schedule has no shifts", ErrInvalidConfig)
	}
	if s.shifts[0].Start != 0 {
		return fmt.Errorf("%w: first shift must start at 0, got %v", ErrInvalidConfig, s.shifts[0].Start)
	}
	for i, sh := range s.shifts {
		if math.IsNaN(sh.Start) || math.IsInf(sh.Start, 0) {
			return fmt.Errorf("%w: shift %d has non-finite start %v", ErrInvalidConfig, i, sh.Start)
		}
		if sh.Servers < 1 {
			return fmt.Errorf("%w: shift %d must have at least one server, got %d", ErrInvalidConfig, i, sh.Servers)
		}
		if i > 0 && sh.Start <= s.shifts[i-1].Start {
			return fmt.Errorf("%w: shift %d starts at %v, not after %v", ErrInvalidConfig, i, sh.Start, s.shifts[i-1].Start)
		}
	}
	return nil
}

// Shifts returns a copy of the breakpoints.
func (s Schedule) Shifts() []Shift {
	return append([]Shift(nil), s.shifts...)
}

// Period returns the index of the shift in effect at t.
// Times before 0 map to the first shift.
func (s Schedule) Period(t float64) int {
	p := 0
	for i := 1; i < len(s.shifts); i++ {
		if s.shifts[i].Start > t {
			break
		}
		p = i
	}
	return p
}

// ActiveCount returns the number of slots enabled at t.
func (s Schedule) ActiveCount(t float64) int {
	if len(s.shifts) == 0 {
		return 0
	}
	return s.shifts[s.Period(t)].Servers
}

// MaxServers is the pool size needed to honour every shift.
func (s Schedule) MaxServers() int {
	n := 0
	for _, sh := range s.shifts {
		n = max(n, sh.Servers)
	}
	return n
}

// PeriodBounds returns the span of shift i clipped to [0, end].
func (s Schedule) PeriodBounds(i int, end float64) (start, stop float64) {
	start = s.shifts[i].Start
	stop = end
	if i+1 < len(s.shifts) {
		stop = min(s.shifts[i+1].Start, end)
	}
	if stop < start {
		stop = start
	}
	return start, stop
}

// ServerHours integrates the active server count over [0, end].
func (s Schedule) ServerHours(end float64) float64 {
	total := 0.0
	for i, sh := range s.shifts {
		start, stop := s.PeriodBounds(i, end)
		total += (stop - start) * float64(sh.Servers)
	}
	return total
}
