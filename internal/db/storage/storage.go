// Package storage declares the persistence contract shared by the
// PostgreSQL, JSON-file and in-memory backends.
package storage

import (
	"context"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

// Storage is the full persistence surface of the application.
// Every job operation is implicitly scoped by the owning user id; a job
// owned by someone else behaves as models.ErrNotFound.
type Storage interface {
	// CreateUser inserts a new user record and returns its id.
	// Returns models.ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	// GetUserByEmail fetches a user by email.
	// Returns models.ErrNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)

	// GetUserByID fetches a user by id.
	// Returns models.ErrNotFound when no such user exists.
	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	// CreateJob inserts a job application. The caller assigns the id
	// and creation timestamp before the insert.
	CreateJob(ctx context.Context, theJob *job.JobApplication) error

	// GetJobs lists all job applications of the given owner, newest
	// first.
	GetJobs(ctx context.Context, userID string) ([]job.JobApplication, error)

	// GetJob fetches a single job owned by userID.
	GetJob(ctx context.Context, userID, jobID string) (*job.JobApplication, error)

	// UpdateJob applies the non-nil fields of the patch to the job
	// owned by userID and returns the updated record.
	UpdateJob(ctx context.Context, userID, jobID string, patch models.JobPatch) (*job.JobApplication, error)

	// DeleteJob hard-deletes the job owned by userID. Deleting an
	// absent or already deleted job returns models.ErrNotFound.
	DeleteJob(ctx context.Context, userID, jobID string) error

	Ping(ctx context.Context) error

	Close() error
}
