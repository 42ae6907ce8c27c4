package sim

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// === VariateSource ===

// VariateSource produces the random durations the engine consumes.
// Exponential returns a strictly positive, finite duration for rate > 0.
type VariateSource interface {
	Exponential(rate float64) float64
}

// ExponentialSource draws exponential variates from a uniform source.
// Thread-safety: NOT thread-safe. Each run must own its own instance.
type ExponentialSource struct {
	src rand.Source
}

// NewExponentialSource wraps src. Panics on a nil src.
func NewExponentialSource(src rand.Source) *ExponentialSource {
	if src == nil {
		panic("NewExponentialSource: src must not be nil")
	}
	return &ExponentialSource{src: src}
}

// NewSeededSource returns an ExponentialSource backed by a PCG generator
// seeded from seed.
func NewSeededSource(seed int64) *ExponentialSource {
	return NewExponentialSource(rand.NewPCG(uint64(seed), uint64(seed)^pcgStream))
}

// Exponential draws from Exp(rate). Panics unless rate is positive and finite.
func (s *ExponentialSource) Exponential(rate float64) float64 {
	if !(rate > 0) || math.IsInf(rate, 1) {
		panic(fmt.Sprintf("Exponential: rate must be positive and finite, got %v", rate))
	}
	return distuv.Exponential{Rate: rate, Src: s.src}.Rand()
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible batch of runs.
// Two batches with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// pcgStream is the second PCG word mixed into every derived seed.
const pcgStream = 0x9e3779b97f4a7c15

// SubsystemRun returns the subsystem name for run N of a batch.
func SubsystemRun(id int) string {
	return fmt.Sprintf("run_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated sources per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*ExponentialSource
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*ExponentialSource),
	}
}

// ForSubsystem returns a deterministically-seeded source for the named subsystem.
// The same subsystem name always returns the same instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *ExponentialSource {
	if src, ok := p.subsystems[name]; ok {
		return src
	}
	src := NewSeededSource(p.SeedFor(name))
	p.subsystems[name] = src
	return src
}

// SeedFor returns the derived seed for the named subsystem.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
