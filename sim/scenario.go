package sim

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is the file form of a run configuration.
// Exactly one of Servers and Shifts, and one of Horizon and Arrivals, must be given.
// Nil pointer fields mean "not set".
type Scenario struct {
	Name                    string   `yaml:"name,omitempty" json:"name,omitempty"`
	ArrivalRate             float64  `yaml:"arrival_rate" json:"arrival_rate"`
	ServiceRate             float64  `yaml:"service_rate" json:"service_rate"`
	Servers                 int      `yaml:"servers,omitempty" json:"servers,omitempty"`
	Shifts                  []Shift  `yaml:"shifts,omitempty" json:"shifts,omitempty"`
	Capacity                *int     `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	CapacityIncludesService bool     `yaml:"capacity_includes_service,omitempty" json:"capacity_includes_service,omitempty"`
	MaxWait                 *float64 `yaml:"max_wait,omitempty" json:"max_wait,omitempty"`
	Horizon                 float64  `yaml:"horizon,omitempty" json:"horizon,omitempty"`
	Arrivals                int      `yaml:"arrivals,omitempty" json:"arrivals,omitempty"`
	Eviction                string   `yaml:"eviction,omitempty" json:"eviction,omitempty"`
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario with strict field checking,
// so a misspelled key is an error rather than a silent default.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Schedule builds the server schedule described by the scenario.
func (sc *Scenario) Schedule() (Schedule, error) {
	switch {
	case sc.Servers > 0 && len(sc.Shifts) > 0:
		return Schedule{}, fmt.Errorf("%w: servers and shifts are mutually exclusive", ErrInvalidConfig)
	case len(sc.Shifts) > 0:
		return NewSchedule(sc.Shifts)
	case sc.Servers > 0:
		return ConstantSchedule(sc.Servers), nil
	default:
		return Schedule{}, fmt.Errorf("%w: one of servers or shifts is required", ErrInvalidConfig)
	}
}

// Config turns the scenario into a validated engine configuration using src
// as its source of randomness.
func (sc *Scenario) Config(src VariateSource) (Config, error) {
	schedule, err := sc.Schedule()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		ArrivalRate:             sc.ArrivalRate,
		ServiceRate:             sc.ServiceRate,
		Schedule:                schedule,
		Capacity:                sc.Capacity,
		CapacityIncludesService: sc.CapacityIncludesService,
		MaxWait:                 sc.MaxWait,
		Horizon:                 sc.Horizon,
		ArrivalLimit:            sc.Arrivals,
		Eviction:                sc.Eviction,
		Source:                  src,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Clone returns a deep copy, so callers can vary one field per sweep point.
func (sc *Scenario) Clone() *Scenario {
	out := *sc
	out.Shifts = append([]Shift(nil), sc.Shifts...)
	if sc.Capacity != nil {
		out.Capacity = Ptr(*sc.Capacity)
	}
	if sc.MaxWait != nil {
		out.MaxWait = Ptr(*sc.MaxWait)
	}
	return &out
}

// presets are the coffee-counter scenarios the engine was built around.
var presets = map[string]Scenario{
	"fixed": {
		Name: "fixed", ArrivalRate: 40, ServiceRate: 15, Servers: 1, Horizon: 3,
	},
	"capacity": {
		Name: "capacity", ArrivalRate: 20, ServiceRate: 24, Servers: 1, Capacity: Ptr(5), Horizon: 1000,
	},
	"drain": {
		Name: "drain", ArrivalRate: 10, ServiceRate: 15, Servers: 1, Arrivals: 500,
	},
	"balking": {
		Name: "balking", ArrivalRate: 10, ServiceRate: 15, Servers: 1, Arrivals: 500, MaxWait: Ptr(5.0 / 60.0),
	},
	"shifts": {
		Name: "shifts", ArrivalRate: 40, ServiceRate: 15, Horizon: 8,
		Shifts: []Shift{{Start: 0, Servers: 2}, {Start: 2, Servers: 4}, {Start: 5, Servers: 3}},
	},
}

// Preset returns a copy of the named built-in scenario.
func Preset(name string) (*Scenario, bool) {
	p, ok := presets[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// PresetNames lists the built-in scenarios in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
