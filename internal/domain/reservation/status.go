package reservation

import "strings"

// Status is the canonical booking lifecycle state. Localised labels are a
// presentation concern and never compared against.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every canonical status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled}

// NonConsumingStatuses are excluded from availability queries.
var NonConsumingStatuses = []Status{StatusCancelled, StatusCompleted}

// ParseStatus accepts canonical status names only (case-insensitive).
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsValid reports whether s is one of the canonical statuses.
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ConsumesStock reports whether a reservation in this state holds units.
func (s Status) ConsumesStock() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

func (s Status) String() string {
	return string(s)
}
