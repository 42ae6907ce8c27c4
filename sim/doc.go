// Package sim provides the discrete-event simulation engine for a single-line,
// multi-server service counter.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - customer.go: Customer lifecycle (arriving → waiting → in service → completed)
//     and the ownership tag that keeps a customer in exactly one container
//   - event.go: Arrival and Departure events and what each does to the state
//   - simulator.go: the event loop, schedule reconciliation and dispatch
//
// # Step order
//
// Every step selects the next event (an arrival wins only when strictly earlier
// than every departure; departure ties go to the lowest slot), integrates the
// elapsed interval against the pre-event state, advances the clock, executes
// the event, evicts customers from slots the shift schedule switched off, fills
// idle enabled slots from the head of the line, and finally turns away
// customers at the back if evictions left the line over its capacity.
//
// # Policies
//
// The variations of the counter are configuration, not separate programs:
//   - Schedule: constant server count or step function over shifts
//   - AdmissionPolicy: unbounded, line capacity, or system capacity
//   - Config.MaxWait: balking threshold checked when a server would start service
//   - EvictionPolicy: what happens to service interrupted by a shrinking schedule
//
// Runs are deterministic given the injected VariateSource.
package sim
