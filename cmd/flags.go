package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/counter-sim/counter-sim/sim"
	"github.com/counter-sim/counter-sim/sim/trace"
)

// registerScenarioFlags defines the flags that select and override a scenario.
// A flag overrides the scenario only when given explicitly (or via COUNTERSIM_* env).
func registerScenarioFlags(fs *pflag.FlagSet) {
	fs.String("preset", "fixed", "Built-in scenario ("+strings.Join(sim.PresetNames(), ", ")+")")
	fs.String("config", "", "YAML scenario file; takes precedence over --preset")

	fs.Float64("arrival-rate", 0, "Customer arrivals per hour (λ)")
	fs.Float64("service-rate", 0, "Services per hour per server (μ)")
	fs.Int("servers", 0, "Constant number of servers; replaces any shift schedule")
	fs.String("shifts", "", "Shift schedule as start:servers pairs, e.g. 0:2,2:4,5:3")
	fs.Int("capacity", 0, "Maximum waiting line length (0 = unbounded)")
	fs.Bool("capacity-includes-service", false, "Count customers in service against the capacity")
	fs.Float64("max-wait", 0, "Balking threshold in hours (0 = never balk)")
	fs.Float64("horizon", 0, "Simulated hours to run; replaces any arrival limit")
	fs.Int("arrivals", 0, "Stop admitting after this many arrivals and drain; replaces any horizon")
	fs.String("eviction", "", "Interrupted service handling (redraw, resume)")
}

// registerRunFlags defines replication and output flags.
func registerRunFlags(fs *pflag.FlagSet) {
	fs.Int64("seed", 42, "Seed for the run's random streams")
	fs.Int("runs", 1, "Number of independent replications to average")
	fs.String("output", "table", "Report format (table, json)")
	fs.String("record", "", "SQLite database to append run results to")
	fs.String("trace", "none", "Event trace level (none, events)")
}

// runOptions controls replication and reporting, independent of the scenario.
type runOptions struct {
	Seed   int64
	Runs   int
	Output string
	Record string
	Trace  trace.TraceLevel
}

func runOptionsFrom(v *viper.Viper) runOptions {
	return runOptions{
		Seed:   v.GetInt64("seed"),
		Runs:   v.GetInt("runs"),
		Output: v.GetString("output"),
		Record: v.GetString("record"),
		Trace:  trace.TraceLevel(v.GetString("trace")),
	}
}

func (o runOptions) validate() error {
	if o.Runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", o.Runs)
	}
	if o.Output != "table" && o.Output != "json" {
		return fmt.Errorf("unknown --output %q (table, json)", o.Output)
	}
	if !trace.IsValidTraceLevel(string(o.Trace)) {
		return fmt.Errorf("unknown --trace %q (none, events)", o.Trace)
	}
	return nil
}

// resolveScenario loads the base scenario (file or preset) and applies
// explicitly set overrides.
func resolveScenario(v *viper.Viper) (*sim.Scenario, error) {
	var sc *sim.Scenario
	if path := v.GetString("config"); path != "" {
		loaded, err := sim.LoadScenario(path)
		if err != nil {
			return nil, err
		}
		sc = loaded
	} else {
		name := v.GetString("preset")
		p, ok := sim.Preset(name)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (%s)", name, strings.Join(sim.PresetNames(), ", "))
		}
		sc = p
	}
	if err := applyOverrides(v, sc); err != nil {
		return nil, err
	}
	if _, err := sc.Config(sim.NewSeededSource(0)); err != nil {
		return nil, err
	}
	return sc, nil
}

func applyOverrides(v *viper.Viper, sc *sim.Scenario) error {
	if v.IsSet("arrival-rate") {
		sc.ArrivalRate = v.GetFloat64("arrival-rate")
	}
	if v.IsSet("service-rate") {
		sc.ServiceRate = v.GetFloat64("service-rate")
	}
	if v.IsSet("servers") {
		sc.Servers = v.GetInt("servers")
		sc.Shifts = nil
	}
	if v.IsSet("shifts") {
		shifts, err := parseShifts(v.GetString("shifts"))
		if err != nil {
			return err
		}
		sc.Shifts = shifts
		sc.Servers = 0
	}
	if v.IsSet("capacity") {
		c := v.GetInt("capacity")
		if c < 0 {
			return fmt.Errorf("%w: capacity must not be negative, got %d", sim.ErrInvalidConfig, c)
		}
		sc.Capacity = nil
		if c > 0 {
			sc.Capacity = sim.Ptr(c)
		}
	}
	if v.IsSet("capacity-includes-service") {
		sc.CapacityIncludesService = v.GetBool("capacity-includes-service")
	}
	if v.IsSet("max-wait") {
		w := v.GetFloat64("max-wait")
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: max wait must not be negative, got %v", sim.ErrInvalidConfig, w)
		}
		sc.MaxWait = nil
		if w > 0 {
			sc.MaxWait = sim.Ptr(w)
		}
	}
	horizonSet, arrivalsSet := v.IsSet("horizon"), v.IsSet("arrivals")
	if horizonSet {
		sc.Horizon = v.GetFloat64("horizon")
		if !arrivalsSet {
			sc.Arrivals = 0
		}
	}
	if arrivalsSet {
		sc.Arrivals = v.GetInt("arrivals")
		if !horizonSet {
			sc.Horizon = 0
		}
	}
	if v.IsSet("eviction") {
		sc.Eviction = v.GetString("eviction")
	}
	return nil
}

// parseShifts parses "start:servers" pairs separated by commas, e.g. "0:2,2:4,5:3".
func parseShifts(s string) ([]sim.Shift, error) {
	var shifts []sim.Shift
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, servers, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("shift %q: want start:servers", part)
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(start), 64)
		if err != nil {
			return nil, fmt.Errorf("shift %q: bad start: %w", part, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(servers))
		if err != nil {
			return nil, fmt.Errorf("shift %q: bad server count: %w", part, err)
		}
		shifts = append(shifts, sim.Shift{Start: t, Servers: n})
	}
	if len(shifts) == 0 {
		return nil, fmt.Errorf("empty shift schedule %q", s)
	}
	return shifts, nil
}

// describeScenario renders a one-line summary of sc.
func describeScenario(sc *sim.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "λ=%g μ=%g", sc.ArrivalRate, sc.ServiceRate)
	if len(sc.Shifts) > 0 {
		parts := make([]string, len(sc.Shifts))
		for i, sh := range sc.Shifts {
			parts[i] = fmt.Sprintf("%g:%d", sh.Start, sh.Servers)
		}
		fmt.Fprintf(&b, " shifts=%s", strings.Join(parts, ","))
	} else {
		fmt.Fprintf(&b, " servers=%d", sc.Servers)
	}
	if sc.Capacity != nil {
		fmt.Fprintf(&b, " capacity=%d", *sc.Capacity)
		if sc.CapacityIncludesService {
			b.WriteString("(system)")
		}
	}
	if sc.MaxWait != nil {
		fmt.Fprintf(&b, " max-wait=%.4gh", *sc.MaxWait)
	}
	if sc.Horizon > 0 {
		fmt.Fprintf(&b, " horizon=%gh", sc.Horizon)
	}
	if sc.Arrivals > 0 {
		fmt.Fprintf(&b, " arrivals=%d", sc.Arrivals)
	}
	if sc.Eviction != "" {
		fmt.Fprintf(&b, " eviction=%s", sc.Eviction)
	}
	return b.String()
}
