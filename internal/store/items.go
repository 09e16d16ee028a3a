package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/shareit/internal/model"
)

const itemColumns = `i.id, i.name, i.description, i.available, i.owner_id, i.request_id`

// CreateItem creates a new item owned by ownerID.
func CreateItem(ctx context.Context, q Querier, item *model.Item) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items i WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// UpdateItem overwrites an item's editable fields.
func UpdateItem(ctx context.Context, q Querier, item *model.Item) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item together with its bookings and comments.
func DeleteItem(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", translate(err))
	}
	return nil
}

// ListItemsByOwner returns one page of an owner's items ordered by ID.
func ListItemsByOwner(ctx context.Context, q Querier, ownerID int64, page model.Page) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i
		 WHERE i.owner_id = ?
		 ORDER BY i.id
		 LIMIT ? OFFSET ?`,
		ownerID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by owner: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// SearchItems returns one page of available items whose name or description
// contains text, ignoring case.
func SearchItems(ctx context.Context, q Querier, text string, page model.Page) ([]model.Item, error) {
	pattern := likePattern(text)
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i
		 WHERE i.available = 1
		   AND (`+foldFunc+`(i.name) LIKE ? ESCAPE '\' OR `+foldFunc+`(i.description) LIKE ? ESCAPE '\')
		 ORDER BY i.id
		 LIMIT ? OFFSET ?`,
		pattern, pattern, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsByRequester returns every item created in answer to any request
// authored by requesterID.
func ListItemsByRequester(ctx context.Context, q Querier, requesterID int64) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i
		 JOIN requests r ON r.id = i.request_id
		 WHERE r.requester_id = ?
		 ORDER BY i.id`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by requester: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var item model.Item
	var requestID sql.NullInt64
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
