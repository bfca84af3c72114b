package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/authz"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/validation"
)

// PostService manages posts. Every post it returns carries all of its
// comments, whoever wrote them.
type PostService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	logger    *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	validator *validation.Validator,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		comments:  comments,
		validator: validator,
		logger:    logger,
	}
}

// List returns the actor's posts, oldest first.
func (s *PostService) List(ctx context.Context, actor string) ([]model.Post, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	posts, err := s.posts.ListByAuthor(ctx, actor)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("author", actor), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	grouped, err := s.comments.ListByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading comments for posts: %w", err)
	}
	for i := range posts {
		attachComments(&posts[i], grouped)
	}

	return posts, nil
}

// Create stores a new post owned by actor.
func (s *PostService) Create(ctx context.Context, actor string, in PostInput) (*model.Post, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	errs := in.invalid.Clone()
	errs.Require("title", in.Title)
	errs.Require("content", in.Content)

	fields := postFields{Title: trimmed(in.Title), Content: trimmed(in.Content)}
	s.validator.Into(errs, fields)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    fields.Title,
		Content:  fields.Content,
		AuthorID: actor,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post", slog.String("author", actor), slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating post: %w", err)
	}
	post.Comments = []model.Comment{}

	s.logger.Info("post created", slog.String("id", post.ID), slog.String("author", actor))

	return post, nil
}

// Get returns a post the actor owns.
func (s *PostService) Get(ctx context.Context, actor, id string) (*model.Post, error) {
	post, err := s.load(ctx, actor, id, authz.Read)
	if err != nil {
		return nil, err
	}

	grouped, err := s.comments.ListByPosts(ctx, []string{post.ID})
	if err != nil {
		return nil, fmt.Errorf("loading comments for post %s: %w", id, err)
	}
	attachComments(post, grouped)

	return post, nil
}

// Update replaces title and content; both must be present.
func (s *PostService) Update(ctx context.Context, actor, id string, in PostInput) (*model.Post, error) {
	return s.update(ctx, actor, id, in, false)
}

// Patch changes only the fields present in the input.
func (s *PostService) Patch(ctx context.Context, actor, id string, in PostInput) (*model.Post, error) {
	return s.update(ctx, actor, id, in, true)
}

func (s *PostService) update(ctx context.Context, actor, id string, in PostInput, partial bool) (*model.Post, error) {
	post, err := s.load(ctx, actor, id, authz.Update)
	if err != nil {
		return nil, err
	}

	errs := in.invalid.Clone()
	if !partial {
		errs.Require("title", in.Title)
		errs.Require("content", in.Content)
	}

	// Absent fields keep their stored values, which are already valid.
	fields := postFields{
		Title:   orKeep(in.Title, post.Title),
		Content: orKeep(in.Content, post.Content),
	}
	s.validator.Into(errs, fields)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	post.Title = fields.Title
	post.Content = fields.Content
	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.String("id", id), slog.Bool("partial", partial))

	grouped, err := s.comments.ListByPosts(ctx, []string{post.ID})
	if err != nil {
		return nil, fmt.Errorf("loading comments for post %s: %w", id, err)
	}
	attachComments(post, grouped)

	return post, nil
}

// Delete removes the post and, with it, every comment on it.
func (s *PostService) Delete(ctx context.Context, actor, id string) error {
	if _, err := s.load(ctx, actor, id, authz.Delete); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete post", slog.String("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("deleting post: %w", err)
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// Authorize reports whether actor may perform action on post id, without
// returning it. Handlers call it before reading a request body so that a
// missing or foreign post is answered ahead of any problem with the payload.
func (s *PostService) Authorize(ctx context.Context, actor, id string, action authz.Action) error {
	_, err := s.load(ctx, actor, id, action)
	return err
}

// load fetches the post and checks the actor may perform action on it:
// 404 before 403.
func (s *PostService) load(ctx context.Context, actor, id string, action authz.Action) (*model.Post, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, post, action); err != nil {
		return nil, err
	}
	return post, nil
}
