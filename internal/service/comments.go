package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/metrics"
	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/store"
)

// Comment adds a comment to an item. The author must have an approved
// booking of the item that has already ended.
func (s *ItemService) Comment(ctx context.Context, authorID, itemID int64, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("Comment text must not be blank")
	}

	if _, err := requireUser(ctx, s.db, authorID); err != nil {
		return nil, err
	}
	if _, err := requireItem(ctx, s.db, itemID); err != nil {
		return nil, err
	}

	now := s.Now()
	ok, err := store.HasFinishedBooking(ctx, s.db, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("User %d has no finished bookings of item %d", authorID, itemID)
	}

	comment, err := store.CreateComment(ctx, s.db, authorID, itemID, text, now)
	if err != nil {
		return nil, err
	}
	metrics.RecordCommentCreated()

	s.logger.Info("comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("item_id", itemID),
		zap.Int64("author_id", authorID),
	)
	return comment, nil
}
