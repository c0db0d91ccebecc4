package bookings

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusWaitlist  Status = "waitlist"
	// StatusCancelled is accepted by the schema but never persisted;
	// cancellation deletes the row.
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusWaitlist, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// HoldsSeat reports whether a booking in this status owns one decremented seat.
func (s Status) HoldsSeat() bool {
	return s == StatusConfirmed
}
