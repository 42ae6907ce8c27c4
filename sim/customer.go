// Defines the Customer struct that models one arrival at the counter.
// Tracks arrival, service start, service duration and departure times.

package sim

import (
	"fmt"
)

// CustomerState records which container currently owns a Customer.
// A customer is held by exactly one of: the waiting line, a server slot,
// or the completed archive. Rejected and abandoned customers are owned by nobody.
type CustomerState string

const (
	StateArriving  CustomerState = "arriving"
	StateWaiting   CustomerState = "waiting"
	StateInService CustomerState = "in_service"
	StateCompleted CustomerState = "completed"
	StateRejected  CustomerState = "rejected"
	StateAbandoned CustomerState = "abandoned"
)

// NoServer is the Server value of a customer not assigned to any slot.
const NoServer = -1

// Customer is one arrival at the counter. It moves between the waiting line,
// a server slot and the completed archive, and is held by exactly one of them.
type Customer struct {
	ID int64 // Sequential identifier in arrival order

	ArrivalTime      float64 // Set at creation, never changed
	ServiceStartTime float64 // Start of the (last) service attempt
	ServiceTime      float64 // Duration of the (last) service attempt
	DepartureTime    float64 // ServiceStartTime + ServiceTime

	Server    int           // Slot index while in service, NoServer otherwise
	Served    bool          // Service has begun and was not interrupted
	Abandoned bool          // Left the line without service
	State     CustomerState // Ownership tag

	// remaining is the unfinished service carried over from an interrupted
	// service attempt. Only the resume eviction policy sets it.
	remaining float64
}

func newCustomer(id int64, arrival float64) *Customer {
	return &Customer{
		ID:          id,
		ArrivalTime: arrival,
		Server:      NoServer,
		State:       StateArriving,
	}
}

// Wait is the time spent in line before the last service attempt began.
func (c *Customer) Wait() float64 {
	return c.ServiceStartTime - c.ArrivalTime
}

// Sojourn is the total time spent in the system.
func (c *Customer) Sojourn() float64 {
	return c.DepartureTime - c.ArrivalTime
}

// String renders the customer for debug logs.
func (c Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %d, State: %s, ArrivalTime: %.6f, Server: %d)", c.ID, c.State, c.ArrivalTime, c.Server)
}
