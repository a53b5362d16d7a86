// Package model defines the records persisted by the document stores and
// returned by the API.
package model

import "time"

// User is an account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// Author is the public slice of a user that other documents embed or join:
// the owner of a profile, or the snapshot taken when posting.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
