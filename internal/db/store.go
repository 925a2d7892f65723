// Package db provides persistence for listings, applications, activity and accounts.
// Two backends implement Store: an in-memory one for development and tests,
// and a PostgreSQL one backed by pgxpool.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/types"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrUsernameTaken is the ErrDuplicate returned when another account
	// already holds the username, compared case-insensitively.
	ErrUsernameTaken = fmt.Errorf("username taken: %w", ErrDuplicate)
)

// AnonymousKey is the user key for requests without an authenticated user.
const AnonymousKey = "anonymous"

// Store is the persistence surface used by the HTTP API.
type Store interface {
	// CreateInternship assigns an id, defaults PostedAt to today and stores the listing.
	CreateInternship(ctx context.Context, rec types.JobRecord) (types.JobRecord, error)
	// ListInternships returns listings newest first.
	ListInternships(ctx context.Context) ([]types.JobRecord, error)
	GetInternship(ctx context.Context, id string) (types.JobRecord, error)
	// DeleteInternship removes a listing and returns what was removed.
	DeleteInternship(ctx context.Context, id string) (types.JobRecord, error)
	ListInternshipsByRecruiter(ctx context.Context, username string) ([]types.JobRecord, error)

	CreateFreelanceJob(ctx context.Context, job types.FreelanceJob) (types.FreelanceJob, error)
	ListFreelanceJobs(ctx context.Context) ([]types.FreelanceJob, error)

	// AddApplication is idempotent on (internshipID, applicant email); a repeat returns the stored record.
	AddApplication(ctx context.Context, internshipID string, applicant types.Applicant) (types.Application, error)
	ListApplications(ctx context.Context) ([]types.Application, error)

	// ToggleBookmark flips the bookmark and reports whether it is now set.
	ToggleBookmark(ctx context.Context, userKey, internshipID string) (bool, error)
	ListBookmarks(ctx context.Context, userKey string) ([]string, error)

	GetRecruiter(ctx context.Context) (types.RecruiterStatus, error)
	SetRecruiterVerified(ctx context.Context, verified bool) (types.RecruiterStatus, error)

	// GetProgress returns ErrNotFound when the user has no tracker yet.
	GetProgress(ctx context.Context, userKey string) (types.Progress, error)
	SaveProgress(ctx context.Context, userKey string, p types.Progress) error

	AddEvent(ctx context.Context, ev types.Event) (types.Event, error)
	ListEvents(ctx context.Context) ([]types.Event, error)
	PruneEvents(ctx context.Context, before time.Time) (int, error)

	AddVoiceNote(ctx context.Context, note types.VoiceNote) (types.VoiceNote, error)
	ListVoiceNotes(ctx context.Context) ([]types.VoiceNote, error)
	PruneVoiceNotes(ctx context.Context, before time.Time) (int, error)

	// CreateUser returns ErrDuplicate when the email is taken and
	// ErrUsernameTaken when the username is.
	// The user lookups return nil without error when no account matches.
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)

	Close()
}
