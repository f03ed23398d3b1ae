// Package mockstorage provides a testify-based mock implementation
// of the storage interface used by the router package.
// It is used for unit testing HTTP handlers by simulating storage behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

// StorageMock is a testify mock that implements the storage interface
// consumed by the router.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user insertion.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByEmail mocks the email lookup.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByID mocks the id lookup.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// CreateJob mocks job insertion.
func (m *StorageMock) CreateJob(ctx context.Context, theJob *job.JobApplication) error {
	args := m.Called(ctx, theJob)
	return args.Error(0)
}

// GetJobs mocks the owner-scoped listing.
func (m *StorageMock) GetJobs(ctx context.Context, userID string) ([]job.JobApplication, error) {
	args := m.Called(ctx, userID)
	jobs, _ := args.Get(0).([]job.JobApplication)
	return jobs, args.Error(1)
}

// GetJob mocks the owner-scoped single fetch.
func (m *StorageMock) GetJob(ctx context.Context, userID, jobID string) (*job.JobApplication, error) {
	args := m.Called(ctx, userID, jobID)
	theJob, _ := args.Get(0).(*job.JobApplication)
	return theJob, args.Error(1)
}

// UpdateJob mocks the partial update.
func (m *StorageMock) UpdateJob(
	ctx context.Context,
	userID,
	jobID string,
	patch models.JobPatch,
) (*job.JobApplication, error) {
	args := m.Called(ctx, userID, jobID, patch)
	theJob, _ := args.Get(0).(*job.JobApplication)
	return theJob, args.Error(1)
}

// DeleteJob mocks the hard delete.
func (m *StorageMock) DeleteJob(ctx context.Context, userID, jobID string) error {
	args := m.Called(ctx, userID, jobID)
	return args.Error(0)
}

// Ping mocks the readiness check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks resource cleanup.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
