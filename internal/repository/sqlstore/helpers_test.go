package sqlstore

import (
	"context"
	"testing"

	"github.com/sakif/blog-api/internal/model"
)

// newTestDB opens a fresh in-memory SQLite database with the schema applied.
// t.Cleanup closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "$2a$04$not-a-real-hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *DB, authorID, title string) *model.Post {
	t.Helper()
	post := &model.Post{Title: title, Content: "content of " + title, AuthorID: authorID}
	if err := db.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func createTestComment(t *testing.T, db *DB, postID, authorID, text string) *model.Comment {
	t.Helper()
	comment := &model.Comment{Text: text, PostID: postID, AuthorID: authorID}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}
