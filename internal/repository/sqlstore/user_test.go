package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Username: "alice", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	err := db.Users().Create(context.Background(), &model.User{Username: "alice", PasswordHash: "other"})
	if err == nil {
		t.Fatal("Create() should reject a duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob")

	found, err := db.Users().GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Username != "bob" {
		t.Errorf("Username = %q, want %q", found.Username, "bob")
	}
	if found.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, created.PasswordHash)
	}
}

func TestUserGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "carol")

	found, err := db.Users().GetByUsername(context.Background(), "carol")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = db.Users().GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestUserUsernameExists(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dave")

	tests := []struct {
		username string
		want     bool
	}{
		{"dave", true},
		{"Dave", false},
		{"eve", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			got, err := db.Users().UsernameExists(context.Background(), tt.username)
			if err != nil {
				t.Fatalf("UsernameExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UsernameExists(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}
