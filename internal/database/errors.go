package database

import "errors"

var (
	// ErrTaskNotFound is returned when a task does not exist or is not owned by the caller
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering a username that already exists
	ErrUsernameTaken = errors.New("username already taken")
)
