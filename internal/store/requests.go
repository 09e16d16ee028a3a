package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/shareit/internal/model"
)

// CreateRequest records a new item request.
func CreateRequest(ctx context.Context, q Querier, requesterID int64, description string, created time.Time) (*model.ItemRequest, error) {
	created = created.UTC()
	result, err := q.ExecContext(ctx,
		`INSERT INTO requests (description, requester_id, created_at) VALUES (?, ?, ?)`,
		description, requesterID, created,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return &model.ItemRequest{
		ID:          id,
		Description: description,
		RequesterID: requesterID,
		Created:     created,
	}, nil
}

// GetRequest returns a request by ID, or nil if there is none.
func GetRequest(ctx context.Context, q Querier, id int64) (*model.ItemRequest, error) {
	r := &model.ItemRequest{}
	err := q.QueryRowContext(ctx,
		`SELECT id, description, requester_id, created_at FROM requests WHERE id = ?`, id,
	).Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	r.Created = r.Created.UTC()
	return r, nil
}

// ListRequestsByRequester returns a user's own requests, newest first.
func ListRequestsByRequester(ctx context.Context, q Querier, requesterID int64) ([]model.ItemRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, description, requester_id, created_at FROM requests
		 WHERE requester_id = ?
		 ORDER BY created_at DESC, id DESC`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing own requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListRequestsExcept returns one page of requests made by anyone other than
// requesterID, highest ID first.
func ListRequestsExcept(ctx context.Context, q Querier, requesterID int64, page model.Page) ([]model.ItemRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, description, requester_id, created_at FROM requests
		 WHERE requester_id <> ?
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
		requesterID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing other requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

func scanRequests(rows *sql.Rows) ([]model.ItemRequest, error) {
	requests := []model.ItemRequest{}
	for rows.Next() {
		var r model.ItemRequest
		if err := rows.Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		r.Created = r.Created.UTC()
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
