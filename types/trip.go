package types

import "time"

type TripStatus string

const (
	TripStatusPlanned   TripStatus = "planned"   // Start date is still in the future
	TripStatusOngoing   TripStatus = "ongoing"   // Today falls within the trip's date range
	TripStatusCompleted TripStatus = "completed" // End date has passed
)

// String provides a string representation of the status
func (ts TripStatus) String() string {
	return string(ts)
}

// IsValid checks if the status is a valid trip status
func (ts TripStatus) IsValid() bool {
	switch ts {
	case TripStatusPlanned, TripStatusOngoing, TripStatusCompleted:
		return true
	default:
		return false
	}
}

// ClassifyStatus derives the lifecycle status of a trip from its date range
// and the given reference day. All comparisons are calendar-date only; a trip
// whose start or end date equals today counts as ongoing.
func ClassifyStatus(start, end, today Date) TripStatus {
	if end.Before(today) {
		return TripStatusCompleted
	}
	if !start.After(today) {
		return TripStatusOngoing
	}
	return TripStatusPlanned
}

type Trip struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Destination string     `json:"destination"`
	StartDate   Date       `json:"startDate"`
	EndDate     Date       `json:"endDate"`
	Status      TripStatus `json:"status"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TripUpdate is a partial update; nil fields are left unchanged.
type TripUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Destination *string     `json:"destination,omitempty"`
	StartDate   *Date       `json:"startDate,omitempty"`
	EndDate     *Date       `json:"endDate,omitempty"`
	Status      *TripStatus `json:"status,omitempty"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
}
