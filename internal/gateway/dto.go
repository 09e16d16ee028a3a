package gateway

import (
	"errors"
	"time"

	"github.com/erazemk/shareit/internal/model"
)

type userCreate struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userUpdate struct {
	Name  *string `json:"name" validate:"omitnil,notblank"`
	Email *string `json:"email" validate:"omitnil,email"`
}

type itemCreate struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank,max=200"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitnil,gt=0"`
}

type itemUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank"`
	Description *string `json:"description" validate:"omitnil,notblank,max=200"`
	Available   *bool   `json:"available"`
}

type commentCreate struct {
	Text string `json:"text" validate:"notblank"`
}

type requestCreate struct {
	Description string `json:"description" validate:"notblank"`
}

type bookingCreate struct {
	ItemID int64           `json:"itemId" validate:"gt=0"`
	Start  model.LocalTime `json:"start"`
	End    model.LocalTime `json:"end"`
}

// checkWindow enforces the booking window rules that need the current time.
func (b *bookingCreate) checkWindow(now time.Time) error {
	if b.Start.IsZero() || b.End.IsZero() {
		return errors.New("start and end are required")
	}
	if !b.End.After(b.Start.Time) {
		return errors.New("end must be after start")
	}
	if b.Start.Before(now) {
		return errors.New("start must not be in the past")
	}
	return nil
}
