package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/store"
)

// RequestService manages the item request board.
type RequestService struct {
	db     *sql.DB
	logger *zap.Logger

	// Now stamps new requests.
	Now func() time.Time
}

// NewRequestService returns a RequestService backed by db.
func NewRequestService(db *sql.DB, logger *zap.Logger) *RequestService {
	return &RequestService{db: db, logger: logger.Named("requests"), Now: time.Now}
}

// Create posts a request for an item.
func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*model.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, invalid("Request description must not be blank")
	}
	if _, err := requireUser(ctx, s.db, requesterID); err != nil {
		return nil, err
	}

	req, err := store.CreateRequest(ctx, s.db, requesterID, description, s.Now())
	if err != nil {
		return nil, err
	}
	req.Items = []model.Item{}

	s.logger.Info("request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("requester_id", requesterID),
	)
	return req, nil
}

// Get returns a request with the items offered for it.
func (s *RequestService) Get(ctx context.Context, viewerID, requestID int64) (*model.ItemRequest, error) {
	if _, err := requireUser(ctx, s.db, viewerID); err != nil {
		return nil, err
	}

	req, err := store.GetRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, notFound("Request %d not found", requestID)
	}

	if err := s.attachItems(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListOwn returns the requester's own requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]model.ItemRequest, error) {
	if _, err := requireUser(ctx, s.db, requesterID); err != nil {
		return nil, err
	}

	reqs, err := store.ListRequestsByRequester(ctx, s.db, requesterID)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if err := s.attachItems(ctx, &reqs[i]); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// ListOthers returns one page of requests made by other users, highest ID
// first.
func (s *RequestService) ListOthers(ctx context.Context, requesterID int64, page model.Page) ([]model.ItemRequest, error) {
	if !page.Valid() {
		return nil, invalid("Not correct page parameters")
	}

	reqs, err := store.ListRequestsExcept(ctx, s.db, requesterID, page)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if err := s.attachItems(ctx, &reqs[i]); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// attachItems sets req.Items to every item answering any request by the
// same requester, not only req itself. Existing clients depend on this.
func (s *RequestService) attachItems(ctx context.Context, req *model.ItemRequest) error {
	items, err := store.ListItemsByRequester(ctx, s.db, req.RequesterID)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Comments = []model.Comment{}
	}
	req.Items = items
	return nil
}
