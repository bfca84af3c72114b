package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/validation"
)

// =========================================================================
// FAKES
// =========================================================================
//
// In-memory repositories. Rows keep insertion order, which stands in for
// the creation order the real store sorts by. Every getter returns copies so
// a service mutating its result cannot reach into the fake's state.

type fakeUserRepo struct {
	users  []model.User
	nextID int
	// set to simulate failures
	createErr error
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type fakePostRepo struct {
	posts    []model.Post
	comments *fakeCommentRepo // for the cascade on Delete
	nextID   int
	listErr  error
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	f.nextID++
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	post.CreatedAt = time.Now()
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			p.Comments = nil
			return &p, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (f *fakePostRepo) Exists(_ context.Context, id string) (bool, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostRepo) ListByAuthor(_ context.Context, authorID string) ([]model.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := []model.Post{}
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i].Title = post.Title
			f.posts[i].Content = post.Content
			return nil
		}
	}
	return apperror.NotFound("post", post.ID)
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			if f.comments != nil {
				f.comments.deletePost(id)
			}
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

type fakeCommentRepo struct {
	comments []model.Comment
	nextID   int
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	f.nextID++
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (f *fakeCommentRepo) ListByAuthor(_ context.Context, authorID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range f.comments {
		if c.AuthorID == authorID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCommentRepo) ListByPostAndAuthor(_ context.Context, postID, authorID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID && c.AuthorID == authorID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCommentRepo) ListByPosts(_ context.Context, postIDs []string) (map[string][]model.Comment, error) {
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	grouped := make(map[string][]model.Comment)
	for _, c := range f.comments {
		if wanted[c.PostID] {
			grouped[c.PostID] = append(grouped[c.PostID], c)
		}
	}
	return grouped, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *model.Comment) error {
	for i := range f.comments {
		if f.comments[i].ID == comment.ID {
			f.comments[i].Text = comment.Text
			return nil
		}
	}
	return apperror.NotFound("comment", comment.ID)
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("comment", id)
}

func (f *fakeCommentRepo) deletePost(postID string) {
	kept := f.comments[:0]
	for _, c := range f.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	f.comments = kept
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func ptr(s string) *string { return &s }

// fixture bundles the fakes and both content services over them.
type fixture struct {
	posts    *fakePostRepo
	comments *fakeCommentRepo
	postSvc  *PostService
	comSvc   *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	comments := &fakeCommentRepo{}
	posts := &fakePostRepo{comments: comments}
	v := validation.New()
	return &fixture{
		posts:    posts,
		comments: comments,
		postSvc:  NewPostService(posts, comments, v, testLogger()),
		comSvc:   NewCommentService(comments, posts, v, testLogger()),
	}
}

func (f *fixture) mustPost(t *testing.T, actor, title string) *model.Post {
	t.Helper()
	p, err := f.postSvc.Create(context.Background(), actor, PostInput{Title: ptr(title), Content: ptr("body")})
	if err != nil {
		t.Fatalf("creating post: %v", err)
	}
	return p
}

func (f *fixture) mustComment(t *testing.T, actor, postID, text string) *model.Comment {
	t.Helper()
	c, err := f.comSvc.CreateOnPost(context.Background(), actor, postID, CommentInput{Text: ptr(text)})
	if err != nil {
		t.Fatalf("creating comment: %v", err)
	}
	return c
}

// fieldErrors extracts the field map from a validation error, failing the
// test if err is anything else.
func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Fields == nil {
		t.Fatalf("error = %v, want a validation error with fields", err)
	}
	return appErr.Fields
}
