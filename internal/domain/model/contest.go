// Package model contains domain models passed between layers.
package model

// Status is a contest's lifecycle state. Contests only ever move forward
// through the progression below; cancelled is absorbing and reachable
// from any non-terminal state.
type Status string

const (
	StatusUpcoming      Status = "upcoming"
	StatusLive          Status = "live"
	StatusJoiningClosed Status = "joining_closed"
	StatusCalculating   Status = "calculating"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// progression assigns each forward state its position in the lifecycle.
var progression = map[Status]int{
	StatusUpcoming:      0,
	StatusLive:          1,
	StatusJoiningClosed: 2,
	StatusCalculating:   3,
	StatusCompleted:     4,
}

// Order returns the status position in the forward progression, or -1
// for cancelled, which sits outside the order.
func (s Status) Order() int {
	if o, ok := progression[s]; ok {
		return o
	}
	return -1
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusCancelled || s.Order() >= 0
}

// Contest is the slice of the persisted contest record the engine works
// with. The engine never creates or deletes contests; it only advances
// Status.
type Contest struct {
	ID          string
	MatchID     string
	RawCategory string   // free-form tag as authored, e.g. "death1", "odi_prematch"
	Category    Category // parsed once at load time
	Status      Status
}
