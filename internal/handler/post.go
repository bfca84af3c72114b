package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/authz"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

// PostService is what PostHandler needs from the service layer.
type PostService interface {
	List(ctx context.Context, actor string) ([]model.Post, error)
	Create(ctx context.Context, actor string, in service.PostInput) (*model.Post, error)
	Get(ctx context.Context, actor, id string) (*model.Post, error)
	Authorize(ctx context.Context, actor, id string, action authz.Action) error
	Update(ctx context.Context, actor, id string, in service.PostInput) (*model.Post, error)
	Patch(ctx context.Context, actor, id string, in service.PostInput) (*model.Post, error)
	Delete(ctx context.Context, actor, id string) error
}

// PostCommentService backs the comment routes nested under a post.
type PostCommentService interface {
	RequirePost(ctx context.Context, actor, postID string) error
	ListForPost(ctx context.Context, actor, postID string) ([]model.Comment, error)
	CreateOnPost(ctx context.Context, actor, postID string, in service.CommentInput) (*model.Comment, error)
}

// PostHandler serves /posts and /posts/{id}/comments.
//
// Writes to an existing post, and comment creation under one, settle
// authentication, existence and ownership before the body is read: a missing
// or foreign post is reported even when the payload is unusable.
type PostHandler struct {
	responder
	posts    PostService
	comments PostCommentService
}

func NewPostHandler(posts PostService, comments PostCommentService, logger *slog.Logger) *PostHandler {
	return &PostHandler{responder: responder{logger: logger}, posts: posts, comments: comments}
}

// HandleList handles GET /posts.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

// HandleCreate handles POST /posts.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	post, err := h.posts.Create(r.Context(), actor(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

// HandleRetrieve handles GET /posts/{id}.
func (h *PostHandler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), actor(r), resourceID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

// HandleUpdate handles PUT /posts/{id}.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.posts.Update)
}

// HandlePartialUpdate handles PATCH /posts/{id}.
func (h *PostHandler) HandlePartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.posts.Patch)
}

func (h *PostHandler) update(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor, id string, in service.PostInput) (*model.Post, error),
) {
	if err := h.posts.Authorize(r.Context(), actor(r), resourceID(r), authz.Update); err != nil {
		h.writeError(w, err)
		return
	}

	var in service.PostInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	post, err := apply(r.Context(), actor(r), resourceID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

// HandleDelete handles DELETE /posts/{id}.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), actor(r), resourceID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListComments handles GET /posts/{id}/comments: the caller's own
// comments on that post.
func (h *PostHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForPost(r.Context(), actor(r), resourceID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comments)
}

// HandleCreateComment handles POST /posts/{id}/comments.
func (h *PostHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.RequirePost(r.Context(), actor(r), resourceID(r)); err != nil {
		h.writeError(w, err)
		return
	}

	var in service.CommentInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	comment, err := h.comments.CreateOnPost(r.Context(), actor(r), resourceID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Debug("comment added to post", slog.String("post", comment.PostID), slog.String("id", comment.ID))
	h.writeJSON(w, http.StatusCreated, comment)
}
