package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB stores comments in the comments table. Ordering follows the same
// id-based rule as PostDB.
type CommentDB struct {
	conn *sqlx.DB
}

const commentColumns = `id, text, created_at, post_id, author_id`

// Create inserts a new comment and fills in ID and CreatedAt. The post_id
// foreign key rejects comments on posts that do not exist.
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := c.conn.ExecContext(ctx, c.conn.Rebind(
		`INSERT INTO comments (id, text, created_at, post_id, author_id)
		 VALUES (?, ?, ?, ?, ?)`),
		comment.ID,
		comment.Text,
		comment.CreatedAt,
		comment.PostID,
		comment.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating comment on post %s: %w", comment.PostID, err)
	}

	return nil
}

func (c *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment

	err := c.conn.GetContext(ctx, &comment, c.conn.Rebind(
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlstore: getting comment %s: %w", id, err)
	}

	return &comment, nil
}

func (c *CommentDB) ListByAuthor(ctx context.Context, authorID string) ([]model.Comment, error) {
	comments := []model.Comment{}

	err := c.conn.SelectContext(ctx, &comments, c.conn.Rebind(
		`SELECT `+commentColumns+` FROM comments WHERE author_id = ? ORDER BY id ASC`), authorID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments of %s: %w", authorID, err)
	}

	return comments, nil
}

func (c *CommentDB) ListByPostAndAuthor(ctx context.Context, postID, authorID string) ([]model.Comment, error) {
	comments := []model.Comment{}

	err := c.conn.SelectContext(ctx, &comments, c.conn.Rebind(
		`SELECT `+commentColumns+` FROM comments
		 WHERE post_id = ? AND author_id = ?
		 ORDER BY id ASC`), postID, authorID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments on post %s: %w", postID, err)
	}

	return comments, nil
}

// ListByPosts loads the comments of many posts with a single IN query.
// Posts without comments are absent from the map.
func (c *CommentDB) ListByPosts(ctx context.Context, postIDs []string) (map[string][]model.Comment, error) {
	grouped := make(map[string][]model.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+commentColumns+` FROM comments WHERE post_id IN (?) ORDER BY id ASC`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: building comment batch query: %w", err)
	}

	var comments []model.Comment
	if err := c.conn.SelectContext(ctx, &comments, c.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments of %d posts: %w", len(postIDs), err)
	}

	for _, comment := range comments {
		grouped[comment.PostID] = append(grouped[comment.PostID], comment)
	}

	return grouped, nil
}

// Update writes the text only; post_id and author_id are fixed at creation.
func (c *CommentDB) Update(ctx context.Context, comment *model.Comment) error {
	result, err := c.conn.ExecContext(ctx, c.conn.Rebind(
		`UPDATE comments SET text = ? WHERE id = ?`),
		comment.Text,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating comment %s: %w", comment.ID, err)
	}

	return checkAffected(result, apperror.NotFound("comment", comment.ID))
}

func (c *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := c.conn.ExecContext(ctx, c.conn.Rebind(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting comment %s: %w", id, err)
	}

	return checkAffected(result, apperror.NotFound("comment", id))
}
