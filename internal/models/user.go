package models

import "time"

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session is the server-side record a browser cookie points at.
// It carries everything the views need so requests never hit the
// users table just to greet somebody.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Username  string
	ExpiresAt time.Time
}
