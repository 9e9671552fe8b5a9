// Package domain holds the gateway's view of the library system entities.
// The gateway owns none of this data; every entity here mirrors what one of
// the three downstream services reports over its HTTP contract.
package domain

// ReservationStatus represents the state of a reservation
type ReservationStatus string

const (
	StatusRented   ReservationStatus = "RENTED"
	StatusReturned ReservationStatus = "RETURNED"
	StatusExpired  ReservationStatus = "EXPIRED"
)

// BookCondition represents the recorded physical condition of a book
type BookCondition string

const (
	ConditionExcellent BookCondition = "EXCELLENT"
	ConditionGood      BookCondition = "GOOD"
	ConditionBad       BookCondition = "BAD"
)

// DateLayout is the wire format for all dates exchanged with clients
// and downstream services.
const DateLayout = "2006-01-02"

// Reservation mirrors the Reservation service's record of a rental.
// Owned by the Reservation service; the gateway only reads and writes it
// through that service's HTTP contract.
type Reservation struct {
	ReservationUID string            `json:"reservationUid"`
	BookUID        string            `json:"bookUid"`
	LibraryUID     string            `json:"libraryUid"`
	Username       string            `json:"username"`
	Status         ReservationStatus `json:"status"`
	StartDate      string            `json:"startDate"`
	TillDate       string            `json:"tillDate"`
}

// Book mirrors the Library service's record of a title held by a library
type Book struct {
	BookUID        string        `json:"bookUid"`
	Name           string        `json:"name"`
	Author         string        `json:"author"`
	Genre          string        `json:"genre"`
	Condition      BookCondition `json:"condition"`
	AvailableCount int           `json:"availableCount"`
}

// Library mirrors the Library service's record of a branch
type Library struct {
	LibraryUID string `json:"libraryUid"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
}

// Rating mirrors the Rating service's record of a user's standing
type Rating struct {
	Stars int `json:"stars"`
}
