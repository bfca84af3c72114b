package model

import "time"

// Comment belongs to one post and one author. PostID, AuthorID and
// CreatedAt are immutable after creation; only Text can change.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	Text      string    `json:"text"       db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	PostID    string    `json:"post"       db:"post_id"`
	AuthorID  string    `json:"author"     db:"author_id"`
}

// OwnerID returns the user who may read, change, or delete the comment.
func (c *Comment) OwnerID() string { return c.AuthorID }
