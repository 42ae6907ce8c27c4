// Implements the WaitingLine, which holds all customers admitted but not yet in service.
// Customers are appended on arrival and pushed back to the front when a shrinking
// shift schedule interrupts their service.

package sim

import (
	"fmt"
	"strings"
)

// Unbounded is the line limit meaning "no capacity bound".
const Unbounded = -1

// WaitingLine represents the FIFO line of customers waiting for a free server.
// Every member has Served == false and State == StateWaiting.
type WaitingLine struct {
	queue []*Customer // FIFO order = arrival/eviction order
}

// Enqueue adds a customer to the back of the line.
// Panics if the customer is already owned by a line.
func (wl *WaitingLine) Enqueue(c *Customer) {
	wl.take(c)
	wl.queue = append(wl.queue, c)
}

// PrependFront inserts a customer at the front of the line.
// Used for eviction: a customer interrupted by a shift change goes back to
// the head of the line for immediate reassignment.
func (wl *WaitingLine) PrependFront(c *Customer) {
	wl.take(c)
	wl.queue = append([]*Customer{c}, wl.queue...)
}

func (wl *WaitingLine) take(c *Customer) {
	if c == nil {
		panic("WaitingLine: customer must not be nil")
	}
	if c.State == StateWaiting {
		panic(fmt.Sprintf("WaitingLine: customer %d is already waiting", c.ID))
	}
	if c.Served {
		panic(fmt.Sprintf("WaitingLine: customer %d still marked served", c.ID))
	}
	c.State = StateWaiting
	c.Server = NoServer
}

// TryAdmit appends the customer unless the line already holds limit members.
// A negative limit means the line is unbounded. Returns false on rejection;
// the rejected customer is discarded by the caller.
func (wl *WaitingLine) TryAdmit(c *Customer, limit int) bool {
	if limit >= 0 && len(wl.queue) >= limit {
		c.State = StateRejected
		return false
	}
	wl.Enqueue(c)
	return true
}

// TrimTo removes customers from the back of the line until it holds at most
// limit members, marks them rejected and returns them newest first.
// A negative limit leaves the line unchanged.
func (wl *WaitingLine) TrimTo(limit int) []*Customer {
	if limit < 0 || len(wl.queue) <= limit {
		return nil
	}
	var trimmed []*Customer
	for len(wl.queue) > limit {
		last := wl.queue[len(wl.queue)-1]
		wl.queue = wl.queue[:len(wl.queue)-1]
		last.State = StateRejected
		trimmed = append(trimmed, last)
	}
	return trimmed
}

// NextServable returns the first customer that may still be served at now,
// without removing it. Heads that have waited longer than maxWait are removed,
// marked abandoned and passed to onBalk. A nil maxWait disables balking.
// Returns nil if the line runs empty.
func (wl *WaitingLine) NextServable(now float64, maxWait *float64, onBalk func(*Customer)) *Customer {
	for len(wl.queue) > 0 {
		head := wl.queue[0]
		if maxWait == nil || now-head.ArrivalTime <= *maxWait {
			return head
		}
		wl.queue = wl.queue[1:]
		head.State = StateAbandoned
		head.Abandoned = true
		if onBalk != nil {
			onBalk(head)
		}
	}
	return nil
}

func (wl *WaitingLine) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range wl.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(wl.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of customers in the line.
func (wl *WaitingLine) Len() int {
	return len(wl.queue)
}

// Peek returns the customer at the front of the line without removing it.
// Returns nil if the line is empty.
func (wl *WaitingLine) Peek() *Customer {
	if len(wl.queue) == 0 {
		return nil
	}
	return wl.queue[0]
}

// Dequeue removes and returns the customer at the front of the line.
// Returns nil if the line is empty.
func (wl *WaitingLine) Dequeue() *Customer {
	if len(wl.queue) == 0 {
		return nil
	}
	head := wl.queue[0]
	wl.queue = wl.queue[1:]
	return head
}
