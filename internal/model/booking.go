package model

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus is the owner's decision on a booking.
type BookingStatus string

// Booking statuses. A booking starts WAITING and moves to one of the
// terminal statuses exactly once.
const (
	BookingWaiting  BookingStatus = "WAITING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
)

// BookingState selects which bookings a listing returns.
type BookingState string

// Booking list states.
const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState parses a state query parameter. An empty value means ALL.
func ParseBookingState(s string) (BookingState, error) {
	if s == "" {
		return StateAll, nil
	}
	switch st := BookingState(strings.ToUpper(s)); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	}
	return "", errors.New("Unknown state: UNSUPPORTED_STATUS")
}

// Booking is a reservation of an item for a time window.
type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	ItemID   int64         `json:"-"`
	BookerID int64         `json:"-"`
	OwnerID  int64         `json:"-"`

	// Joined fields.
	Item   *BookingItem `json:"item"`
	Booker *User        `json:"booker"`
}

// BookingItem is the slice of an item embedded in booking responses.
type BookingItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// BookingShort is the reduced booking shown on an item card.
type BookingShort struct {
	ID       int64     `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	ItemID   int64     `json:"itemId"`
	BookerID int64     `json:"bookerId"`
}

// Short reduces a booking to its item-card form.
func (b *Booking) Short() *BookingShort {
	return &BookingShort{
		ID:       b.ID,
		Start:    b.Start,
		End:      b.End,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
	}
}
