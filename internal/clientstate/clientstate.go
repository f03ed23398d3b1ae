// Package clientstate holds the session-local list of job applications
// on the presentation side. Every mutating command follows one pattern:
// apply the change locally, capture an undo snapshot, issue the API
// call, then reconcile with the server's representation on success or
// restore the snapshot on failure.
//
// The store is meant for a single-threaded UI event loop and does no
// locking of its own. A second mutation on the same record started
// before the first reconciliation completes is last-write-wins; that
// race is documented behavior, not a guarantee.
package clientstate

import (
	"context"
	"errors"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

// ErrUnknownJob is returned when a command references a job id that is
// not in the session list.
var ErrUnknownJob = errors.New("unknown job id")

// ErrNoActiveDrag is returned by DragOver/EndDrag without a BeginDrag.
var ErrNoActiveDrag = errors.New("no drag in progress")

// API is the subset of the apiclient the store issues commands through.
type API interface {
	GetJobs(ctx context.Context) ([]job.JobApplication, error)
	CreateJob(ctx context.Context, createRequest models.CreateJobRequest) (*job.JobApplication, error)
	UpdateJob(ctx context.Context, jobID string, patch models.JobPatch) (*job.JobApplication, error)
	DeleteJob(ctx context.Context, jobID string) error
}

type dragState struct {
	jobID string

	// startStatus is the status at BeginDrag. A failed persist reverts
	// here, not to whatever column was traversed during the gesture.
	startStatus models.Status
}

// Store is the client state container.
type Store struct {
	api  API
	jobs []job.JobApplication
	drag *dragState
}

// New creates an empty store issuing commands through api.
func New(api API) *Store {
	return &Store{
		api:  api,
		jobs: []job.JobApplication{},
	}
}

// Load replaces the session list with the server's, newest first.
func (s *Store) Load(ctx context.Context) error {
	jobs, err := s.api.GetJobs(ctx)
	if err != nil {
		return err
	}

	s.jobs = jobs

	return nil
}

// Jobs returns a copy of the session list.
func (s *Store) Jobs() []job.JobApplication {
	return s.snapshot()
}

// Find returns the job with the given id from the session list.
func (s *Store) Find(jobID string) (*job.JobApplication, error) {
	for i := range s.jobs {
		if s.jobs[i].ID == jobID {
			found := s.jobs[i]
			return &found, nil
		}
	}

	return nil, ErrUnknownJob
}

func (s *Store) snapshot() []job.JobApplication {
	snapshot := make([]job.JobApplication, len(s.jobs))
	copy(snapshot, s.jobs)

	return snapshot
}

func (s *Store) replace(reconciled job.JobApplication) {
	for i := range s.jobs {
		if s.jobs[i].ID == reconciled.ID {
			s.jobs[i] = reconciled
			return
		}
	}
}

// mutate is the generic optimistic helper: apply the tentative local
// change, keep the pre-change snapshot, then commit the server's
// representation or revert the whole list on failure.
func (s *Store) mutate(
	apply func(),
	call func() (*job.JobApplication, error),
	reconcile func(reconciled *job.JobApplication),
) error {
	snapshot := s.snapshot()

	apply()

	reconciled, err := call()
	if err != nil {
		s.jobs = snapshot
		return err
	}

	if reconcile != nil && reconciled != nil {
		reconcile(reconciled)
	}

	return nil
}

const placeholderID = "(pending)"

// Add creates a job application. The record appears at the head of the
// list immediately under a placeholder id and is reconciled with the
// server-assigned id and timestamp on success.
func (s *Store) Add(ctx context.Context, createRequest models.CreateJobRequest) error {
	return s.mutate(
		func() {
			tentative := job.JobApplication{
				ID:       placeholderID,
				Company:  createRequest.Company,
				Position: createRequest.Position,
				Email:    createRequest.Email,
				Status:   createRequest.Status,
			}
			s.jobs = append([]job.JobApplication{tentative}, s.jobs...)
		},
		func() (*job.JobApplication, error) {
			return s.api.CreateJob(ctx, createRequest)
		},
		func(reconciled *job.JobApplication) {
			for i := range s.jobs {
				if s.jobs[i].ID == placeholderID {
					s.jobs[i] = *reconciled
					return
				}
			}
		},
	)
}

func (s *Store) patchCommand(ctx context.Context, jobID string, patch models.JobPatch) error {
	theJob, err := s.Find(jobID)
	if err != nil {
		return err
	}

	return s.mutate(
		func() {
			theJob.ApplyPatch(patch)
			s.replace(*theJob)
		},
		func() (*job.JobApplication, error) {
			return s.api.UpdateJob(ctx, jobID, patch)
		},
		func(reconciled *job.JobApplication) {
			s.replace(*reconciled)
		},
	)
}

// EditCompany updates the company field.
func (s *Store) EditCompany(ctx context.Context, jobID, company string) error {
	return s.patchCommand(ctx, jobID, models.JobPatch{Company: &company})
}

// EditPosition updates the position field.
func (s *Store) EditPosition(ctx context.Context, jobID, position string) error {
	return s.patchCommand(ctx, jobID, models.JobPatch{Position: &position})
}

// EditEmail updates the contact email; an empty value clears it.
func (s *Store) EditEmail(ctx context.Context, jobID, email string) error {
	return s.patchCommand(ctx, jobID, models.JobPatch{Email: &email})
}

// ChangeStatus moves the job to another pipeline stage.
func (s *Store) ChangeStatus(ctx context.Context, jobID string, status models.Status) error {
	return s.patchCommand(ctx, jobID, models.JobPatch{Status: &status})
}

// Delete removes the job locally right away and restores it when the
// server call fails. The restore is purely a client-side rollback; the
// server knows no undo.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	if _, err := s.Find(jobID); err != nil {
		return err
	}

	return s.mutate(
		func() {
			kept := s.jobs[:0:0]
			for _, theJob := range s.jobs {
				if theJob.ID != jobID {
					kept = append(kept, theJob)
				}
			}
			s.jobs = kept
		},
		func() (*job.JobApplication, error) {
			return nil, s.api.DeleteJob(ctx, jobID)
		},
		nil,
	)
}

// BeginDrag starts a drag gesture on the given job, recording the
// status to revert to should the final persist fail.
func (s *Store) BeginDrag(jobID string) error {
	theJob, err := s.Find(jobID)
	if err != nil {
		return err
	}

	s.drag = &dragState{
		jobID:       jobID,
		startStatus: theJob.Status,
	}

	return nil
}

// DragOver applies the optimistic move to the hovered column. It is
// local-only: nothing is persisted until EndDrag, however many columns
// the gesture traverses.
func (s *Store) DragOver(targetStatus models.Status) error {
	if s.drag == nil {
		return ErrNoActiveDrag
	}

	theJob, err := s.Find(s.drag.jobID)
	if err != nil {
		return err
	}

	if theJob.Status == targetStatus {
		return nil
	}

	theJob.Status = targetStatus
	s.replace(*theJob)

	return nil
}

// EndDrag persists the status reached during the gesture, once. On
// failure the job reverts to the status recorded at BeginDrag.
func (s *Store) EndDrag(ctx context.Context) error {
	if s.drag == nil {
		return ErrNoActiveDrag
	}

	drag := s.drag
	s.drag = nil

	theJob, err := s.Find(drag.jobID)
	if err != nil {
		return err
	}

	if theJob.Status == drag.startStatus {
		return nil
	}

	status := theJob.Status
	reconciled, err := s.api.UpdateJob(ctx, drag.jobID, models.JobPatch{Status: &status})
	if err != nil {
		theJob.Status = drag.startStatus
		s.replace(*theJob)
		return err
	}

	s.replace(*reconciled)

	return nil
}
