package kafka

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type EventType string

const (
	EventLoanOpened          EventType = "loan.opened"
	EventLoanReturned        EventType = "loan.returned"
	EventLoanExtended        EventType = "loan.extended"
	EventReservationCreated  EventType = "reservation.created"
	EventReservationCanceled EventType = "reservation.cancelled"
	EventReservationPromoted EventType = "reservation.promoted"
	EventPurchaseTransition  EventType = "purchase.transitioned"
	EventBookAdmitted        EventType = "book.admitted"
)

// EventCirculation is the envelope published for every committed state change.
type EventCirculation struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ActorID       string    `json:"actorId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	BookID        string    `json:"bookId,omitempty"`
	LoanID        string    `json:"loanId,omitempty"`
	ReservationID string    `json:"reservationId,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	Status        string    `json:"status,omitempty"`
}

func (e EventCirculation) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Key routes all events of one book (or request) to one partition.
func (e EventCirculation) Key() string {
	if e.BookID != "" {
		return e.BookID
	}
	return e.RequestID
}

func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
