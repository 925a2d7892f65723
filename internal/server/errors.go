// Package server provides the HTTP JSON API of the job board.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/db"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrUsernameTaken indicates another account already uses the username
type ErrUsernameTaken struct {
	Username string
}

func (e *ErrUsernameTaken) Error() string {
	return fmt.Sprintf("username already taken: %s", e.Username)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "Invalid credentials"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure.
// Message is what the client sees.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrNotFound indicates a missing listing or other resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return "Not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists, *ErrUsernameTaken:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrUserNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	}
	if errors.Is(err, db.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, db.ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// clientMessage is the text sent in the {"error": ...} body for err.
// Internal failures are not described to the client.
func clientMessage(err error) string {
	switch e := err.(type) {
	case *ErrEmailAlreadyExists:
		return "Account already exists"
	case *ErrUsernameTaken:
		return "Username already taken"
	case *ErrNotFound:
		return "Not found"
	case *ErrValidation, *ErrInvalidCredentials:
		return e.Error()
	}
	switch HTTPStatus(err) {
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Already exists"
	case http.StatusUnauthorized:
		return "Unauthorized"
	}
	return "Internal server error"
}
