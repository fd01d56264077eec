package domain

import "encoding/json"

// SeatStatus is the visible state of a microphone seat.
type SeatStatus int

const (
	SeatEmpty SeatStatus = iota
	SeatOccupied
	SeatLocked
)

func (s SeatStatus) String() string {
	switch s {
	case SeatEmpty:
		return "empty"
	case SeatOccupied:
		return "occupied"
	case SeatLocked:
		return "locked"
	}
	return "unknown"
}

func (s SeatStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Microphone is a numbered seat. The seat references its occupant but does
// not own the User. A locked seat cannot be claimed through the normal
// apply flow, only by explicit assignment.
type Microphone struct {
	SeatNumber int
	Status     SeatStatus
	Occupant   *User
	Locked     bool
}

func newMicrophone(seat int) *Microphone {
	return &Microphone{SeatNumber: seat, Status: SeatEmpty}
}
