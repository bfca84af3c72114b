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

// MsgPostNotFound is the field error for a comment pointing at a missing post.
const MsgPostNotFound = "Post not found."

// CommentService manages comments. A comment belongs to its author; owning
// the post it sits under grants nothing.
type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	validator *validation.Validator
	logger    *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	validator *validation.Validator,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		validator: validator,
		logger:    logger,
	}
}

// ListForPost returns the actor's own comments on a post. Other users'
// comments on the same post are not included, and a post the actor does not
// own still yields their comments on it (often none) rather than 403.
func (s *CommentService) ListForPost(ctx context.Context, actor, postID string) ([]model.Comment, error) {
	if err := s.RequirePost(ctx, actor, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPostAndAuthor(ctx, postID, actor)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("post", postID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments on post %s: %w", postID, err)
	}
	return comments, nil
}

// CreateOnPost adds a comment under postID. A missing post is reported as
// 404 before the body is looked at.
func (s *CommentService) CreateOnPost(ctx context.Context, actor, postID string, in CommentInput) (*model.Comment, error) {
	if err := s.RequirePost(ctx, actor, postID); err != nil {
		return nil, err
	}

	errs := in.invalid.Clone()
	errs.Require("text", in.Text)
	fields := commentFields{Text: trimmed(in.Text)}
	s.validator.Into(errs, fields)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return s.create(ctx, &model.Comment{Text: fields.Text, PostID: postID, AuthorID: actor})
}

// List returns every comment the actor wrote, across all posts.
func (s *CommentService) List(ctx context.Context, actor string) ([]model.Comment, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	comments, err := s.comments.ListByAuthor(ctx, actor)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("author", actor), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Create adds a comment under the post named in the body. An unknown post
// is a field error on "post", not a 404.
func (s *CommentService) Create(ctx context.Context, actor string, in CommentInput) (*model.Comment, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	errs := in.invalid.Clone()
	errs.Require("text", in.Text)
	errs.Require("post", in.Post)
	fields := commentFields{Text: trimmed(in.Text)}
	s.validator.Into(errs, fields)

	postID := trimmed(in.Post)
	if !errs.Has("post") {
		exists := false
		if postID != "" {
			var err error
			if exists, err = s.posts.Exists(ctx, postID); err != nil {
				return nil, fmt.Errorf("checking post %s: %w", postID, err)
			}
		}
		if !exists {
			errs.Add("post", MsgPostNotFound)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return s.create(ctx, &model.Comment{Text: fields.Text, PostID: postID, AuthorID: actor})
}

// Get returns a comment the actor wrote.
func (s *CommentService) Get(ctx context.Context, actor, id string) (*model.Comment, error) {
	return s.load(ctx, actor, id, authz.Read)
}

// Update replaces the text, which must be present.
func (s *CommentService) Update(ctx context.Context, actor, id string, in CommentInput) (*model.Comment, error) {
	return s.update(ctx, actor, id, in, false)
}

// Patch changes the text only if the input carries it.
func (s *CommentService) Patch(ctx context.Context, actor, id string, in CommentInput) (*model.Comment, error) {
	return s.update(ctx, actor, id, in, true)
}

func (s *CommentService) update(ctx context.Context, actor, id string, in CommentInput, partial bool) (*model.Comment, error) {
	comment, err := s.load(ctx, actor, id, authz.Update)
	if err != nil {
		return nil, err
	}

	errs := in.invalid.Clone()
	if !partial {
		errs.Require("text", in.Text)
	}
	fields := commentFields{Text: orKeep(in.Text, comment.Text)}
	s.validator.Into(errs, fields)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	// in.Post is ignored: a comment never moves to another post.
	comment.Text = fields.Text
	if err := s.comments.Update(ctx, comment); err != nil {
		s.logger.Error("failed to update comment", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.logger.Info("comment updated", slog.String("id", id), slog.Bool("partial", partial))
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor, id string) error {
	if _, err := s.load(ctx, actor, id, authz.Delete); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete comment", slog.String("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}

func (s *CommentService) create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("post", comment.PostID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("post", comment.PostID),
		slog.String("author", comment.AuthorID),
	)
	return comment, nil
}

// RequirePost answers 404 when postID does not exist. It is the only check
// that runs ahead of the body on the nested comment routes.
func (s *CommentService) RequirePost(ctx context.Context, actor, postID string) error {
	if actor == "" {
		return apperror.Unauthorized("Authentication credentials were not provided.")
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("checking post %s: %w", postID, err)
	}
	if !exists {
		return apperror.NotFound("post", postID)
	}
	return nil
}

// Authorize is the comment counterpart of PostService.Authorize.
func (s *CommentService) Authorize(ctx context.Context, actor, id string, action authz.Action) error {
	_, err := s.load(ctx, actor, id, action)
	return err
}

func (s *CommentService) load(ctx context.Context, actor, id string, action authz.Action) (*model.Comment, error) {
	if actor == "" {
		return nil, apperror.Unauthorized("Authentication credentials were not provided.")
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, comment, action); err != nil {
		return nil, err
	}
	return comment, nil
}
