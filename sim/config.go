package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig reports a configuration rejected before any simulation step.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInsufficientData reports a run that cannot be reduced to averages,
	// because nobody completed service or no simulated time elapsed.
	ErrInsufficientData = errors.New("insufficient data")
)

// Config groups everything one run of the engine depends on.
// Exactly one of Horizon and ArrivalLimit must be set.
type Config struct {
	ArrivalRate float64  // λ, arrivals per hour (must be > 0)
	ServiceRate float64  // μ, services per hour per server (must be > 0)
	Schedule    Schedule // active server count over time

	Capacity                *int     // line capacity; nil = unbounded
	CapacityIncludesService bool     // count in-service customers against Capacity
	MaxWait                 *float64 // balking threshold in hours; nil = no balking

	Horizon      float64 // stop at this simulated time (hours)
	ArrivalLimit int     // stop admitting after this many arrivals, then drain

	Eviction string        // "redraw" (default) or "resume"
	Source   VariateSource // injected randomness
}

// Ptr returns a pointer to v, for optional Config fields.
func Ptr[T any](v T) *T {
	return &v
}

// Validate checks every parameter before the run starts.
// All errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if !positiveFinite(c.ArrivalRate) {
		return fmt.Errorf("%w: arrival rate must be positive, got %v", ErrInvalidConfig, c.ArrivalRate)
	}
	if !positiveFinite(c.ServiceRate) {
		return fmt.Errorf("%w: service rate must be positive, got %v", ErrInvalidConfig, c.ServiceRate)
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if c.Capacity != nil && *c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidConfig, *c.Capacity)
	}
	if c.MaxWait != nil && !positiveFinite(*c.MaxWait) {
		return fmt.Errorf("%w: balking threshold must be positive, got %v", ErrInvalidConfig, *c.MaxWait)
	}
	if c.Horizon < 0 || math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) {
		return fmt.Errorf("%w: horizon must be a finite non-negative time, got %v", ErrInvalidConfig, c.Horizon)
	}
	if c.ArrivalLimit < 0 {
		return fmt.Errorf("%w: arrival limit must be non-negative, got %d", ErrInvalidConfig, c.ArrivalLimit)
	}
	if (c.Horizon > 0) == (c.ArrivalLimit > 0) {
		return fmt.Errorf("%w: exactly one of horizon and arrival limit must be set", ErrInvalidConfig)
	}
	if !IsValidEvictionPolicy(c.Eviction) {
		return fmt.Errorf("%w: unknown eviction policy %q", ErrInvalidConfig, c.Eviction)
	}
	if c.Source == nil {
		return fmt.Errorf("%w: variate source must be set", ErrInvalidConfig)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
