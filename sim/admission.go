package sim

// AdmissionPolicy decides how many customers the waiting line may hold.
// The simulator consults it on every arrival and when integrating the
// full-system time.
type AdmissionPolicy interface {
	// LineLimit returns the maximum line length given the number of busy
	// servers, or Unbounded.
	LineLimit(busy int) int
}

// AlwaysAdmit places no bound on the line.
type AlwaysAdmit struct{}

// LineLimit always returns Unbounded.
func (AlwaysAdmit) LineLimit(_ int) int {
	return Unbounded
}

// LineCapacity bounds the number of waiting customers.
type LineCapacity struct {
	Capacity int
}

// LineLimit returns the capacity regardless of busy servers.
func (a LineCapacity) LineLimit(_ int) int {
	return a.Capacity
}

// SystemCapacity bounds waiting plus in-service customers.
type SystemCapacity struct {
	Capacity int
}

// LineLimit returns the room left after the busy servers, never below zero.
func (a SystemCapacity) LineLimit(busy int) int {
	return max(a.Capacity-busy, 0)
}

// NewAdmissionPolicy builds the admission policy for a capacity setting.
// A nil capacity admits everyone.
func NewAdmissionPolicy(capacity *int, includesService bool) AdmissionPolicy {
	switch {
	case capacity == nil:
		return AlwaysAdmit{}
	case includesService:
		return SystemCapacity{Capacity: *capacity}
	default:
		return LineCapacity{Capacity: *capacity}
	}
}

// atCapacity reports whether a line of length n is full under policy.
func atCapacity(policy AdmissionPolicy, n, busy int) bool {
	limit := policy.LineLimit(busy)
	return limit >= 0 && n >= limit
}
