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

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB stores posts in the posts table.
//
// ORDERING:
// xid IDs start with a seconds timestamp followed by a per-process counter,
// so ORDER BY id is creation order. List queries rely on that instead of
// comparing created_at values, which SQLite keeps as text.
type PostDB struct {
	conn *sqlx.DB
}

const postColumns = `id, title, content, created_at, author_id`

// Create inserts a new post and fills in ID and CreatedAt.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now().UTC()

	_, err := p.conn.ExecContext(ctx, p.conn.Rebind(
		`INSERT INTO posts (id, title, content, created_at, author_id)
		 VALUES (?, ?, ?, ?, ?)`),
		post.ID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post. Comments are not loaded.
func (p *PostDB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post

	err := p.conn.GetContext(ctx, &post, p.conn.Rebind(
		`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlstore: getting post %s: %w", id, err)
	}

	return &post, nil
}

// Exists reports whether a post with the given ID is stored.
func (p *PostDB) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := p.conn.GetContext(ctx, &count, p.conn.Rebind(
		`SELECT COUNT(*) FROM posts WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking post %s: %w", id, err)
	}
	return count > 0, nil
}

// ListByAuthor returns every post written by authorID, oldest first.
func (p *PostDB) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	posts := []model.Post{}

	err := p.conn.SelectContext(ctx, &posts, p.conn.Rebind(
		`SELECT `+postColumns+` FROM posts WHERE author_id = ? ORDER BY id ASC`), authorID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing posts of %s: %w", authorID, err)
	}

	return posts, nil
}

// Update writes the title and content. id, author_id and created_at are
// never part of the SET clause.
func (p *PostDB) Update(ctx context.Context, post *model.Post) error {
	result, err := p.conn.ExecContext(ctx, p.conn.Rebind(
		`UPDATE posts SET title = ?, content = ? WHERE id = ?`),
		post.Title,
		post.Content,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating post %s: %w", post.ID, err)
	}

	return checkAffected(result, apperror.NotFound("post", post.ID))
}

// Delete removes the post and its comments in one transaction.
//
// The comments FK also cascades, but deleting the children explicitly keeps
// the behaviour the same on a connection where foreign keys are off.
func (p *PostDB) Delete(ctx context.Context, id string) error {
	tx, err := p.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning delete of post %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
		return fmt.Errorf("sqlstore: deleting comments of post %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting post %s: %w", id, err)
	}
	if err := checkAffected(result, apperror.NotFound("post", id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing delete of post %s: %w", id, err)
	}

	return nil
}
