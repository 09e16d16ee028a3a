package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/metrics"
	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/store"
)

// BookingService creates bookings and records the owner's decisions.
type BookingService struct {
	db     *sql.DB
	logger *zap.Logger

	// Now decides which bookings are current, past or future.
	Now func() time.Time
}

// NewBookingService returns a BookingService backed by db.
func NewBookingService(db *sql.DB, logger *zap.Logger) *BookingService {
	return &BookingService{db: db, logger: logger.Named("bookings"), Now: time.Now}
}

// NewBooking carries the fields of a booking to create. Zero times mean the
// client omitted them.
type NewBooking struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// Create books an item for bookerID. The booking starts out WAITING.
func (s *BookingService) Create(ctx context.Context, bookerID int64, in NewBooking) (*model.Booking, error) {
	if _, err := requireUser(ctx, s.db, bookerID); err != nil {
		return nil, err
	}

	item, err := requireItem(ctx, s.db, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, invalid("Item %d is not available for booking", item.ID)
	}
	if item.OwnerID == bookerID {
		return nil, forbidden("User %d cannot book their own item", bookerID)
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, invalid("Booking start and end are required")
	}
	if !in.End.After(in.Start) {
		return nil, invalid("Booking end must be after its start")
	}

	booking, err := store.CreateBooking(ctx, s.db, item.ID, bookerID, in.Start, in.End)
	if err != nil {
		return nil, err
	}
	metrics.RecordBookingCreated()

	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("item_id", item.ID),
		zap.Int64("booker_id", bookerID),
	)
	return booking, nil
}

// Decide approves or rejects a WAITING booking. Only the item's owner may
// decide, and only once.
func (s *BookingService) Decide(ctx context.Context, ownerID, bookingID int64, approved bool) (*model.Booking, error) {
	status := model.BookingRejected
	if approved {
		status = model.BookingApproved
	}

	var booking *model.Booking
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := requireBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.OwnerID != ownerID {
			return forbidden("User %d does not own the item of booking %d", ownerID, bookingID)
		}
		if b.Status != model.BookingWaiting {
			return invalid("Booking %d has already been %s", bookingID, b.Status)
		}

		if err := store.UpdateBookingStatus(ctx, tx, bookingID, status); err != nil {
			return err
		}
		b.Status = status
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordBookingDecision(string(status))

	s.logger.Info("booking decided",
		zap.Int64("booking_id", bookingID),
		zap.String("status", string(status)),
	)
	return booking, nil
}

// Get returns a booking to its booker or to the item's owner.
func (s *BookingService) Get(ctx context.Context, viewerID, bookingID int64) (*model.Booking, error) {
	b, err := requireBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if viewerID != b.BookerID && viewerID != b.OwnerID {
		return nil, forbidden("User %d cannot view booking %d", viewerID, bookingID)
	}
	return b, nil
}

// ListByBooker returns the bookings made by userID in the given state,
// latest start first. A nil page returns every match.
func (s *BookingService) ListByBooker(ctx context.Context, userID int64, state model.BookingState, page *model.Page) ([]model.Booking, error) {
	return s.list(ctx, userID, store.BookingFilter{BookerID: userID}, state, page)
}

// ListByOwner returns the bookings of items owned by ownerID in the given
// state, latest start first. A nil page returns every match.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state model.BookingState, page *model.Page) ([]model.Booking, error) {
	return s.list(ctx, ownerID, store.BookingFilter{OwnerID: ownerID}, state, page)
}

func (s *BookingService) list(ctx context.Context, userID int64, f store.BookingFilter, state model.BookingState, page *model.Page) ([]model.Booking, error) {
	if page != nil && !page.Valid() {
		return nil, invalid("Not correct page parameters")
	}
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return nil, err
	}
	parsed, err := model.ParseBookingState(string(state))
	if err != nil {
		return nil, invalid("%s", err)
	}

	f.State = parsed
	f.Now = s.Now()
	f.Page = page
	return store.ListBookings(ctx, s.db, f)
}

func requireBooking(ctx context.Context, q store.Querier, id int64) (*model.Booking, error) {
	b, err := store.GetBooking(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("loading booking %d: %w", id, err)
	}
	if b == nil {
		return nil, notFound("Booking %d not found", id)
	}
	return b, nil
}
