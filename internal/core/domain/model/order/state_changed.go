package order

import "time"

// StateChanged records a committed transition of one order. It is produced by
// the change-state use case after the store transaction commits and handed to
// the configured publisher.
type StateChanged struct {
	OrderID    ID
	Event      Event
	From       State
	To         State
	OccurredAt time.Time
}
