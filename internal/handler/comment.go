package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/authz"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

type CommentService interface {
	List(ctx context.Context, actor string) ([]model.Comment, error)
	Create(ctx context.Context, actor string, in service.CommentInput) (*model.Comment, error)
	Get(ctx context.Context, actor, id string) (*model.Comment, error)
	Authorize(ctx context.Context, actor, id string, action authz.Action) error
	Update(ctx context.Context, actor, id string, in service.CommentInput) (*model.Comment, error)
	Patch(ctx context.Context, actor, id string, in service.CommentInput) (*model.Comment, error)
	Delete(ctx context.Context, actor, id string) error
}

// CommentHandler serves /comments and /comments/{id}.
type CommentHandler struct {
	responder
	comments CommentService
}

func NewCommentHandler(comments CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{responder: responder{logger: logger}, comments: comments}
}

func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	comment, err := h.comments.Create(r.Context(), actor(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.Get(r.Context(), actor(r), resourceID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.comments.Update)
}

func (h *CommentHandler) HandlePartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.comments.Patch)
}

// update checks the comment exists and belongs to the caller before the body
// is read.
func (h *CommentHandler) update(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor, id string, in service.CommentInput) (*model.Comment, error),
) {
	if err := h.comments.Authorize(r.Context(), actor(r), resourceID(r), authz.Update); err != nil {
		h.writeError(w, err)
		return
	}

	var in service.CommentInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	comment, err := apply(r.Context(), actor(r), resourceID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), actor(r), resourceID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
