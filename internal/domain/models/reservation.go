package models

import "time"

// ReservationState is the closed set of reservation lifecycle states.
type ReservationState int

const (
	// ReservationPending holds stock against availability until finalized
	// or explicitly cancelled. Pending reservations never expire.
	ReservationPending ReservationState = iota
	// ReservationConfirmed is terminal: used/returned quantities are frozen.
	ReservationConfirmed
	// ReservationCancelled is terminal: the hold is released without use.
	ReservationCancelled
)

func (s ReservationState) String() string {
	switch s {
	case ReservationPending:
		return "Pending"
	case ReservationConfirmed:
		return "Confirmed"
	case ReservationCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Reservation links one activity to one stock lot. Invariants:
// Used + Returned <= Requested, and Requested never exceeded availability
// at creation time. For tools the quantities are whole use-counts.
type Reservation struct {
	ID          string           `bson:"_id" json:"id"`
	ActivityID  string           `bson:"activityId" json:"activityId"`
	LotID       string           `bson:"lotId" json:"lotId"`
	ProductID   string           `bson:"productId" json:"productId"`
	Requested   float64          `bson:"requested" json:"requested"`
	Used        float64          `bson:"used" json:"used"`
	Returned    float64          `bson:"returned" json:"returned"`
	State       ReservationState `bson:"state" json:"state"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	FinalizedAt time.Time        `bson:"finalizedAt,omitempty" json:"finalizedAt,omitempty"`
}

// Holding is the quantity a reservation still counts against availability.
// Only Pending reservations hold stock.
func (r Reservation) Holding() float64 {
	switch r.State {
	case ReservationPending:
		return r.Requested - r.Used - r.Returned
	case ReservationConfirmed, ReservationCancelled:
		return 0
	default:
		return 0
	}
}
