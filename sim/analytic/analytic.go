// Package analytic solves the steady-state single-server queueing models a
// simulated counter can be compared against: M/M/1 and M/M/1/K.
// Times are in hours and rates per hour, matching package sim.
package analytic

import (
	"errors"
	"fmt"
	"math"

	"github.com/llm-inferno/queue-analysis/pkg/queue"
)

// ErrUnstable reports parameters for which the model has no steady state.
var ErrUnstable = errors.New("no steady state")

// M/M/1 is solved as M/M/1/K with K deep enough that the truncated tail
// carries less than tailMass probability.
const (
	tailMass = 1e-12
	maxDepth = 1 << 20
)

// Estimate holds the steady-state measures of one model.
type Estimate struct {
	Model string `json:"model"`
	// K is the number of customers the system holds, in service included;
	// zero for the unbounded model.
	K int `json:"k,omitempty"`

	Utilization    float64 `json:"utilization"`
	AvgWaitingTime float64 `json:"avg_waiting_time"`
	AvgSojournTime float64 `json:"avg_sojourn_time"`
	AvgQueueLength float64 `json:"avg_queue_length"`
	ProbEmptyQueue float64 `json:"prob_empty_queue"`
	ProbFull       float64 `json:"prob_full,omitempty"`
	Throughput     float64 `json:"throughput"`
}

// MM1 solves the unbounded single-server queue. It fails with ErrUnstable
// when λ ≥ μ.
func MM1(lambda, mu float64) (*Estimate, error) {
	if err := checkRates(lambda, mu); err != nil {
		return nil, err
	}
	rho := lambda / mu
	if rho >= 1 {
		return nil, fmt.Errorf("%w: M/M/1 with ρ=%.4f ≥ 1", ErrUnstable, rho)
	}
	k := int(math.Ceil(math.Log(tailMass) / math.Log(rho)))
	est, err := solve(lambda, mu, min(max(k, 1), maxDepth))
	if err != nil {
		return nil, err
	}
	est.Model = "M/M/1"
	est.K = 0
	est.ProbFull = 0
	return est, nil
}

// MM1K solves the single-server queue that holds at most k customers.
// Arrivals finding k customers present are lost.
func MM1K(lambda, mu float64, k int) (*Estimate, error) {
	if err := checkRates(lambda, mu); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, fmt.Errorf("M/M/1/K needs K ≥ 1, got %d", k)
	}
	est, err := solve(lambda, mu, k)
	if err != nil {
		return nil, err
	}
	est.Model = "M/M/1/K"
	return est, nil
}

func checkRates(lambda, mu float64) error {
	if !(lambda > 0) || !(mu > 0) || math.IsInf(lambda, 0) || math.IsInf(mu, 0) {
		return fmt.Errorf("rates must be positive and finite, got λ=%v μ=%v", lambda, mu)
	}
	return nil
}

func solve(lambda, mu float64, k int) (*Estimate, error) {
	m := queue.NewMM1KModel(k)
	m.Solve(float32(lambda), float32(mu))
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: M/M/1/%d with λ=%v μ=%v", ErrUnstable, k, lambda, mu)
	}
	p := m.GetProbabilities()
	return &Estimate{
		K:              k,
		Utilization:    1 - p[0],
		AvgWaitingTime: float64(m.GetAvgWaitTime()),
		AvgSojournTime: float64(m.GetAvgRespTime()),
		AvgQueueLength: float64(m.GetAvgQueueLength()),
		ProbEmptyQueue: p[0] + p[1],
		ProbFull:       p[k],
		Throughput:     float64(m.GetThroughput()),
	}, nil
}
