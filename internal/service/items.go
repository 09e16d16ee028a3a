package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/store"
)

// ItemService manages the item catalog and item comments.
type ItemService struct {
	db     *sql.DB
	logger *zap.Logger

	// Now returns the current time. It decides which bookings are past or
	// future and stamps new comments.
	Now func() time.Time
}

// NewItemService returns an ItemService backed by db.
func NewItemService(db *sql.DB, logger *zap.Logger) *ItemService {
	return &ItemService{db: db, logger: logger.Named("items"), Now: time.Now}
}

// NewItem carries the fields of an item to create.
type NewItem struct {
	Name        string
	Description string
	Available   *bool
	RequestID   *int64
}

// ItemUpdate carries the fields of a partial item update. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Name        *string
	Description *string
	Available   *bool
}

// Create lists a new item for ownerID. A request ID that does not resolve to
// an existing request is dropped.
func (s *ItemService) Create(ctx context.Context, ownerID int64, in NewItem) (*model.Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("Item name must not be blank")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("Item description must not be blank")
	}
	if in.Available == nil {
		return nil, invalid("Item availability is required")
	}

	if _, err := requireUser(ctx, s.db, ownerID); err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   *in.Available,
		OwnerID:     ownerID,
	}
	if in.RequestID != nil {
		req, err := store.GetRequest(ctx, s.db, *in.RequestID)
		if err != nil {
			return nil, fmt.Errorf("loading request %d: %w", *in.RequestID, err)
		}
		if req != nil {
			item.RequestID = &req.ID
		}
	}

	created, err := store.CreateItem(ctx, s.db, item)
	if err != nil {
		return nil, err
	}
	created.Comments = []model.Comment{}

	s.logger.Info("item created",
		zap.Int64("item_id", created.ID),
		zap.Int64("owner_id", ownerID),
	)
	return created, nil
}

// Update applies the non-nil fields of upd. Only the owner may update an
// item.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, upd ItemUpdate) (*model.Item, error) {
	var item *model.Item
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		it, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if it.OwnerID != ownerID {
			return forbidden("User %d does not own item %d", ownerID, itemID)
		}

		if upd.Name != nil {
			if strings.TrimSpace(*upd.Name) == "" {
				return invalid("Item name must not be blank")
			}
			it.Name = *upd.Name
		}
		if upd.Description != nil {
			if strings.TrimSpace(*upd.Description) == "" {
				return invalid("Item description must not be blank")
			}
			it.Description = *upd.Description
		}
		if upd.Available != nil {
			it.Available = *upd.Available
		}

		if err := store.UpdateItem(ctx, tx, it); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Comments, err = store.ListCommentsByItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item updated", zap.Int64("item_id", itemID))
	return item, nil
}

// Get returns an item with its comments. The owner also sees the most
// recent past booking and the nearest future one.
func (s *ItemService) Get(ctx context.Context, itemID, viewerID int64) (*model.Item, error) {
	item, err := requireItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	item.Comments, err = store.ListCommentsByItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != viewerID {
		return item, nil
	}

	now := s.Now()
	last, err := store.LastBookingBefore(ctx, s.db, itemID, now)
	if err != nil {
		return nil, err
	}
	if last != nil {
		item.LastBooking = last.Short()
	}

	next, err := store.NextBookingAfter(ctx, s.db, itemID, now)
	if err != nil {
		return nil, err
	}
	if next != nil {
		item.NextBooking = next.Short()
	}

	return item, nil
}

// ListByOwner returns one page of an owner's items, each with comments and
// its last and next booking.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, page model.Page) ([]model.Item, error) {
	if !page.Valid() {
		return nil, invalid("Not correct page parameters")
	}

	items, err := store.ListItemsByOwner(ctx, s.db, ownerID, page)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	lastByItem, err := store.LastBookingsForItems(ctx, s.db, ids, s.Now())
	if err != nil {
		return nil, err
	}

	for i := range items {
		it := &items[i]
		if last, ok := lastByItem[it.ID]; ok {
			it.LastBooking = last.Short()

			next, err := store.NextBookingAfter(ctx, s.db, it.ID, last.Start)
			if err != nil {
				return nil, err
			}
			if next != nil {
				it.NextBooking = next.Short()
			}
		}

		it.Comments, err = store.ListCommentsByItem(ctx, s.db, it.ID)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

// Search returns one page of available items whose name or description
// contains text. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string, page model.Page) ([]model.Item, error) {
	if !page.Valid() {
		return nil, invalid("Not correct page parameters")
	}
	if strings.TrimSpace(text) == "" {
		return []model.Item{}, nil
	}
	return store.SearchItems(ctx, s.db, text, page)
}

// Delete removes an item along with its bookings and comments.
func (s *ItemService) Delete(ctx context.Context, itemID int64) error {
	if _, err := requireItem(ctx, s.db, itemID); err != nil {
		return err
	}
	if err := store.DeleteItem(ctx, s.db, itemID); err != nil {
		return err
	}

	s.logger.Info("item deleted", zap.Int64("item_id", itemID))
	return nil
}

func requireItem(ctx context.Context, q store.Querier, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("loading item %d: %w", id, err)
	}
	if item == nil {
		return nil, notFound("Item %d not found", id)
	}
	return item, nil
}
