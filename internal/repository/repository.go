// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (see sqlstore).
//
// Every method takes a context so a cancelled request stops its query.
// Lookups by ID return an apperror.ErrNotFound error when no row matches.
// List methods return an empty (non-nil) slice when nothing matches, and
// return rows ordered by ID ascending. IDs are xids: a seconds timestamp, a
// machine and process id, then a counter, so within one process ID order is
// creation order. Rows written in the same second by different processes, or
// after the counter wraps, may sort out of creation order; ordering never
// goes backwards across seconds.
package repository

import (
	"context"

	"github.com/sakif/blog-api/internal/model"
)

type UserRepository interface {
	// Create inserts the user and fills in ID and CreatedAt. A duplicate
	// username yields an apperror.ErrConflict error.
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error)
	// Update writes Title and Content only.
	Update(ctx context.Context, post *model.Post) error
	// Delete removes the post and all of its comments atomically.
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByAuthor(ctx context.Context, authorID string) ([]model.Comment, error)
	ListByPostAndAuthor(ctx context.Context, postID, authorID string) ([]model.Comment, error)
	// ListByPosts returns every comment on the given posts, grouped by post ID.
	ListByPosts(ctx context.Context, postIDs []string) (map[string][]model.Comment, error)
	// Update writes Text only.
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
}
