package model

import "time"

// Post is a blog entry owned by exactly one user.
//
// AuthorID and CreatedAt are set once, when the post is created, and are
// never written again. Comments is filled by the service layer on reads;
// the store does not populate it.
type Post struct {
	ID        string    `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	AuthorID  string    `json:"author"     db:"author_id"`
	Comments  []Comment `json:"comments"   db:"-"`
}

// OwnerID returns the user who may read, change, or delete the post.
func (p *Post) OwnerID() string { return p.AuthorID }
