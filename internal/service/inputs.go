// Package service holds the business rules. Every operation on an existing
// resource checks, in order: the caller is known, the resource exists, the
// caller owns it, the input is valid; only then is anything persisted.
// Nothing here knows about HTTP; handlers decode requests into the input
// types below and map the returned apperror kinds to status codes.
package service

import (
	"strings"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/validation"
)

// Input structs use pointers so a field missing from the body (nil) can be
// told apart from one sent empty (""). Decoding never fails on a field of the
// wrong JSON type; the problem is kept in invalid and reported alongside the
// other field errors once the target resource has been checked.

type PostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`

	invalid validation.Errors
}

func (in *PostInput) UnmarshalJSON(data []byte) (err error) {
	in.invalid, err = validation.DecodeStrings(data, map[string]**string{
		"title":   &in.Title,
		"content": &in.Content,
	})
	return err
}

type CommentInput struct {
	Text *string `json:"text"`
	// Post is read by CommentService.Create only. Updates ignore it.
	Post *string `json:"post"`

	invalid validation.Errors
}

func (in *CommentInput) UnmarshalJSON(data []byte) (err error) {
	in.invalid, err = validation.DecodeStrings(data, map[string]**string{
		"text": &in.Text,
		"post": &in.Post,
	})
	return err
}

type RegisterInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`

	invalid validation.Errors
}

func (in *RegisterInput) UnmarshalJSON(data []byte) (err error) {
	in.invalid, err = validation.DecodeStrings(data, map[string]**string{
		"username": &in.Username,
		"password": &in.Password,
	})
	return err
}

type LoginInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`

	invalid validation.Errors
}

func (in *LoginInput) UnmarshalJSON(data []byte) (err error) {
	in.invalid, err = validation.DecodeStrings(data, map[string]**string{
		"username": &in.Username,
		"password": &in.Password,
	})
	return err
}

type RefreshInput struct {
	Refresh *string `json:"refresh"`

	invalid validation.Errors
}

func (in *RefreshInput) UnmarshalJSON(data []byte) (err error) {
	in.invalid, err = validation.DecodeStrings(data, map[string]**string{
		"refresh": &in.Refresh,
	})
	return err
}

// Rule structs for the validator. Values are already trimmed.

type postFields struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"required,max=1000"`
}

type commentFields struct {
	Text string `json:"text" validate:"required,max=500"`
}

type userFields struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Password string `json:"password" validate:"min=6"`
}

// trimmed returns the trimmed value of p, or "" when p is nil.
func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// orKeep returns the trimmed value of p, or current when p is nil.
func orKeep(p *string, current string) string {
	if p == nil {
		return current
	}
	return strings.TrimSpace(*p)
}

func attachComments(post *model.Post, grouped map[string][]model.Comment) {
	post.Comments = grouped[post.ID]
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
}
