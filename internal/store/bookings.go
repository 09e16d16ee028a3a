package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/shareit/internal/model"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.status, b.item_id, b.booker_id,
	        i.owner_id, i.name, i.description, i.available,
	        u.name, u.email
	 FROM bookings b
	 JOIN items i ON i.id = b.item_id
	 JOIN users u ON u.id = b.booker_id`

// BookingFilter selects bookings for ListBookings. Exactly one of BookerID
// and OwnerID is normally set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    model.BookingState
	Now      time.Time
	Page     *model.Page
}

// CreateBooking stores a new WAITING booking.
func CreateBooking(ctx context.Context, q Querier, itemID, bookerID int64, start, end time.Time) (*model.Booking, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO bookings (start_at, end_at, item_id, booker_id, status) VALUES (?, ?, ?, ?, ?)`,
		start.UTC(), end.UTC(), itemID, bookerID, model.BookingWaiting,
	)
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting booking id: %w", err)
	}

	return GetBooking(ctx, q, id)
}

// GetBooking returns a booking with its item and booker, or nil if there is
// none.
func GetBooking(ctx context.Context, q Querier, id int64) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatus sets the status of a booking.
func UpdateBookingStatus(ctx context.Context, q Querier, id int64, status model.BookingStatus) error {
	_, err := q.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}
	return nil
}

// ListBookings returns bookings matching the filter, latest start first.
func ListBookings(ctx context.Context, q Querier, f BookingFilter) ([]model.Booking, error) {
	query := bookingSelect + ` WHERE 1=1`
	var args []any

	if f.BookerID > 0 {
		query += ` AND b.booker_id = ?`
		args = append(args, f.BookerID)
	}
	if f.OwnerID > 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, f.OwnerID)
	}

	now := f.Now.UTC()
	switch f.State {
	case model.StateCurrent:
		query += ` AND b.start_at < ? AND b.end_at > ?`
		args = append(args, now, now)
	case model.StatePast:
		query += ` AND b.end_at < ?`
		args = append(args, now)
	case model.StateFuture:
		query += ` AND b.start_at > ?`
		args = append(args, now)
	case model.StateWaiting:
		query += ` AND b.status = ?`
		args = append(args, model.BookingWaiting)
	case model.StateRejected:
		query += ` AND b.status = ?`
		args = append(args, model.BookingRejected)
	}

	query += ` ORDER BY b.start_at DESC, b.id DESC`

	if f.Page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Page.Limit(), f.Page.Offset())
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// LastBookingBefore returns the booking of an item with the latest start
// before now, or nil.
func LastBookingBefore(ctx context.Context, q Querier, itemID int64, now time.Time) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.start_at < ? ORDER BY b.start_at DESC, b.id DESC LIMIT 1`,
		itemID, now.UTC(),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last booking: %w", err)
	}
	return b, nil
}

// NextBookingAfter returns the booking of an item with the earliest start
// after t, or nil.
func NextBookingAfter(ctx context.Context, q Querier, itemID int64, t time.Time) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.start_at > ? ORDER BY b.start_at, b.id LIMIT 1`,
		itemID, t.UTC(),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting next booking: %w", err)
	}
	return b, nil
}

// LastBookingsForItems returns, per item, the booking with the latest start
// before now. Items without such a booking are absent from the map.
func LastBookingsForItems(ctx context.Context, q Querier, itemIDs []int64, now time.Time) (map[int64]*model.Booking, error) {
	last := make(map[int64]*model.Booking, len(itemIDs))
	if len(itemIDs) == 0 {
		return last, nil
	}

	args := []any{now.UTC()}
	for _, id := range itemIDs {
		args = append(args, id)
	}

	rows, err := q.QueryContext(ctx,
		bookingSelect+` WHERE b.start_at < ? AND b.item_id IN (`+placeholders(len(itemIDs))+`)
		 ORDER BY b.start_at DESC, b.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing last bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		// Rows arrive latest first, so the first one per item wins.
		if _, ok := last[b.ItemID]; !ok {
			last[b.ItemID] = b
		}
	}
	return last, rows.Err()
}

// HasFinishedBooking reports whether the user has an approved booking of the
// item that ended before now.
func HasFinishedBooking(ctx context.Context, q Querier, bookerID, itemID int64, now time.Time) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE booker_id = ? AND item_id = ? AND status = ? AND end_at < ?`,
		bookerID, itemID, model.BookingApproved, now.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking finished bookings: %w", err)
	}
	return n > 0, nil
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	b := &model.Booking{
		Item:   &model.BookingItem{},
		Booker: &model.User{},
	}
	err := row.Scan(&b.ID, &b.Start, &b.End, &b.Status, &b.ItemID, &b.BookerID,
		&b.OwnerID, &b.Item.Name, &b.Item.Description, &b.Item.Available,
		&b.Booker.Name, &b.Booker.Email)
	if err != nil {
		return nil, err
	}
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	b.Item.ID = b.ItemID
	b.Booker.ID = b.BookerID
	return b, nil
}
