package clientstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

var errServerDown = errors.New("server down")

// fakeAPI is a scriptable API stub. Calls fail while failing is set,
// letting tests exercise both the commit and the rollback paths.
type fakeAPI struct {
	jobs        []job.JobApplication
	failing     bool
	updateCalls int
	lastPatch   models.JobPatch
}

func (f *fakeAPI) GetJobs(ctx context.Context) ([]job.JobApplication, error) {
	if f.failing {
		return nil, errServerDown
	}

	jobs := make([]job.JobApplication, len(f.jobs))
	copy(jobs, f.jobs)

	return jobs, nil
}

func (f *fakeAPI) CreateJob(
	ctx context.Context,
	createRequest models.CreateJobRequest,
) (*job.JobApplication, error) {
	if f.failing {
		return nil, errServerDown
	}

	created := job.JobApplication{
		ID:        "server-assigned",
		Company:   createRequest.Company,
		Position:  createRequest.Position,
		Email:     createRequest.Email,
		Status:    createRequest.Status,
		CreatedAt: time.Now().UTC(),
		UserID:    "user-1",
	}
	f.jobs = append([]job.JobApplication{created}, f.jobs...)

	return &created, nil
}

func (f *fakeAPI) UpdateJob(
	ctx context.Context,
	jobID string,
	patch models.JobPatch,
) (*job.JobApplication, error) {
	f.updateCalls++
	f.lastPatch = patch

	if f.failing {
		return nil, errServerDown
	}

	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].ApplyPatch(patch)
			updated := f.jobs[i]
			return &updated, nil
		}
	}

	return nil, models.ErrNotFound
}

func (f *fakeAPI) DeleteJob(ctx context.Context, jobID string) error {
	if f.failing {
		return errServerDown
	}

	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}

	return models.ErrNotFound
}

func strPtr(value string) *string {
	return &value
}

func newLoadedStore(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{
		jobs: []job.JobApplication{
			{
				ID:       "job-2",
				Company:  "Globex",
				Position: "SRE",
				Status:   models.StatusInterview,
				UserID:   "user-1",
			},
			{
				ID:       "job-1",
				Company:  "Acme",
				Position: "Eng",
				Email:    strPtr("recruiter@acme.com"),
				Status:   models.StatusApplied,
				UserID:   "user-1",
			},
		},
	}

	store := New(api)
	require.NoError(t, store.Load(context.Background()))

	return store, api
}

func TestLoad(t *testing.T) {
	store, api := newLoadedStore(t)

	jobs := store.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ID)

	api.failing = true
	err := store.Load(context.Background())
	assert.ErrorIs(t, err, errServerDown)

	// A failed reload keeps the previous session list.
	assert.Len(t, store.Jobs(), 2)
}

func TestAddReconcilesPlaceholder(t *testing.T) {
	store, _ := newLoadedStore(t)

	err := store.Add(context.Background(), models.CreateJobRequest{
		Company:  "Initech",
		Position: "QA",
		Status:   models.StatusApplied,
	})
	require.NoError(t, err)

	jobs := store.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, "server-assigned", jobs[0].ID)
	assert.Equal(t, "Initech", jobs[0].Company)
	assert.False(t, jobs[0].CreatedAt.IsZero())
}

func TestAddRevertsOnFailure(t *testing.T) {
	store, api := newLoadedStore(t)
	before := store.Jobs()

	api.failing = true
	err := store.Add(context.Background(), models.CreateJobRequest{
		Company:  "Initech",
		Position: "QA",
		Status:   models.StatusApplied,
	})
	assert.ErrorIs(t, err, errServerDown)

	// The placeholder record is gone and the list is exactly as before.
	assert.Equal(t, before, store.Jobs())
}

func TestPatchCommands(t *testing.T) {
	testCases := []struct {
		name    string
		command func(store *Store) error
		verify  func(t *testing.T, theJob *job.JobApplication)
	}{
		{
			name: "edit_company",
			command: func(store *Store) error {
				return store.EditCompany(context.Background(), "job-1", "Acme Corp")
			},
			verify: func(t *testing.T, theJob *job.JobApplication) {
				assert.Equal(t, "Acme Corp", theJob.Company)
				assert.Equal(t, "Eng", theJob.Position)
			},
		},
		{
			name: "edit_position",
			command: func(store *Store) error {
				return store.EditPosition(context.Background(), "job-1", "Staff Eng")
			},
			verify: func(t *testing.T, theJob *job.JobApplication) {
				assert.Equal(t, "Staff Eng", theJob.Position)
			},
		},
		{
			name: "clear_email",
			command: func(store *Store) error {
				return store.EditEmail(context.Background(), "job-1", "")
			},
			verify: func(t *testing.T, theJob *job.JobApplication) {
				assert.Nil(t, theJob.Email)
			},
		},
		{
			name: "change_status",
			command: func(store *Store) error {
				return store.ChangeStatus(context.Background(), "job-1", models.StatusOffer)
			},
			verify: func(t *testing.T, theJob *job.JobApplication) {
				assert.Equal(t, models.StatusOffer, theJob.Status)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store, _ := newLoadedStore(t)

			require.NoError(t, testCase.command(store))

			theJob, err := store.Find("job-1")
			require.NoError(t, err)
			testCase.verify(t, theJob)
		})
	}
}

func TestPatchRevertsOnFailure(t *testing.T) {
	store, api := newLoadedStore(t)
	before := store.Jobs()

	api.failing = true
	err := store.EditCompany(context.Background(), "job-1", "Acme Corp")
	assert.ErrorIs(t, err, errServerDown)

	assert.Equal(t, before, store.Jobs())
}

func TestPatchUnknownJob(t *testing.T) {
	store, api := newLoadedStore(t)

	err := store.EditCompany(context.Background(), "nope", "Acme Corp")
	assert.ErrorIs(t, err, ErrUnknownJob)

	// An unknown id never reaches the server.
	assert.Zero(t, api.updateCalls)
}

func TestDelete(t *testing.T) {
	store, _ := newLoadedStore(t)

	require.NoError(t, store.Delete(context.Background(), "job-1"))

	jobs := store.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].ID)

	_, err := store.Find("job-1")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestDeleteRestoresOnFailure(t *testing.T) {
	store, api := newLoadedStore(t)
	before := store.Jobs()

	api.failing = true
	err := store.Delete(context.Background(), "job-1")
	assert.ErrorIs(t, err, errServerDown)

	assert.Equal(t, before, store.Jobs())
}

func TestDragPersistsOnce(t *testing.T) {
	store, api := newLoadedStore(t)

	require.NoError(t, store.BeginDrag("job-1"))

	// Traversing several columns stays local.
	require.NoError(t, store.DragOver(models.StatusInterview))
	require.NoError(t, store.DragOver(models.StatusRejected))
	require.NoError(t, store.DragOver(models.StatusOffer))
	assert.Zero(t, api.updateCalls)

	theJob, err := store.Find("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffer, theJob.Status)

	// Dropping persists exactly one status patch.
	require.NoError(t, store.EndDrag(context.Background()))
	assert.Equal(t, 1, api.updateCalls)
	require.NotNil(t, api.lastPatch.Status)
	assert.Equal(t, models.StatusOffer, *api.lastPatch.Status)
}

func TestDragRevertsToStartStatusOnFailure(t *testing.T) {
	store, api := newLoadedStore(t)

	require.NoError(t, store.BeginDrag("job-1"))
	require.NoError(t, store.DragOver(models.StatusInterview))
	require.NoError(t, store.DragOver(models.StatusOffer))

	api.failing = true
	err := store.EndDrag(context.Background())
	assert.ErrorIs(t, err, errServerDown)

	// The revert target is the status at BeginDrag, not a column the
	// gesture passed through.
	theJob, findErr := store.Find("job-1")
	require.NoError(t, findErr)
	assert.Equal(t, models.StatusApplied, theJob.Status)
}

func TestDragBackToStartSkipsPersist(t *testing.T) {
	store, api := newLoadedStore(t)

	require.NoError(t, store.BeginDrag("job-1"))
	require.NoError(t, store.DragOver(models.StatusOffer))
	require.NoError(t, store.DragOver(models.StatusApplied))

	require.NoError(t, store.EndDrag(context.Background()))
	assert.Zero(t, api.updateCalls)
}

func TestDragWithoutBegin(t *testing.T) {
	store, _ := newLoadedStore(t)

	assert.ErrorIs(t, store.DragOver(models.StatusOffer), ErrNoActiveDrag)
	assert.ErrorIs(t, store.EndDrag(context.Background()), ErrNoActiveDrag)
}
