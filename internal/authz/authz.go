// Package authz decides whether a user may act on a resource.
//
// The only rule is ownership: a user can read, update and delete what they
// authored and nothing else. List endpoints never ask; they filter by author
// in the query instead.
package authz

import (
	"fmt"

	"github.com/sakif/blog-api/internal/apperror"
)

type Action string

const (
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

// Resource is anything with an owning user. model.Post and model.Comment
// satisfy it.
type Resource interface {
	OwnerID() string
}

// Authorize returns nil when actor may perform action on res. An empty actor
// gets an ErrUnauthorized error, any other non-owner an ErrForbidden error.
func Authorize(actor string, res Resource, action Action) error {
	if actor == "" {
		return apperror.Unauthorized("Authentication credentials were not provided.")
	}
	if res.OwnerID() != actor {
		return apperror.Forbidden(fmt.Sprintf("You do not have permission to %s this resource.", action))
	}
	return nil
}
