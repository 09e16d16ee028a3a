package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/shareit/internal/model"
)

// CreateComment stores a comment and returns it with the author's name.
func CreateComment(ctx context.Context, q Querier, authorID, itemID int64, text string, created time.Time) (*model.Comment, error) {
	created = created.UTC()
	result, err := q.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?)`,
		text, itemID, authorID, created,
	)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting comment id: %w", err)
	}

	c := &model.Comment{
		ID:       id,
		Text:     text,
		ItemID:   itemID,
		AuthorID: authorID,
		Created:  created,
	}
	err = q.QueryRowContext(ctx,
		`SELECT name FROM users WHERE id = ?`, authorID,
	).Scan(&c.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("getting comment author: %w", err)
	}
	return c, nil
}

// ListCommentsByItem returns the comments on an item, oldest first.
func ListCommentsByItem(ctx context.Context, q Querier, itemID int64) ([]model.Comment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.item_id = ?
		 ORDER BY c.id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.Created = c.Created.UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
