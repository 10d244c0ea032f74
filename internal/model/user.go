// Package model defines domain entities for the application.
package model

import "time"

// User is a row of the users table.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserLookup is the outcome of looking a user up by id.
// Callers must branch on Found; User is the zero value when Found is false.
type UserLookup struct {
	User  User
	Found bool
}

// Found wraps an existing user.
func Found(user User) UserLookup {
	return UserLookup{User: user, Found: true}
}

// NotFound reports that no user matched.
func NotFound() UserLookup {
	return UserLookup{}
}
