// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account known to the identity store.
//
// Only ID and Username are part of the public projection; the bcrypt hash
// and the creation time never leave the server.
type User struct {
	ID           string    `json:"id"       db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	CreatedAt    time.Time `json:"-"        db:"created_at"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
