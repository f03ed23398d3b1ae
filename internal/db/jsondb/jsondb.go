// Package jsondb provides a JSON-file backed implementation of the
// storage interface. The whole dataset is kept in memory and flushed to
// disk on Close, which makes it suitable for local single-process runs
// and tests but not for anything concurrent with the file.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

// CacheStruct is the serialized shape of the whole dataset.
type CacheStruct struct {
	Users        map[string]*user.User
	UsersByEmail map[string]string
	Jobs         map[string]*job.JobApplication
}

// JSONDB is a file-backed storage keeping all records in memory.
type JSONDB struct {
	fileName string

	// Cache is exported so the in-memory backend can embed JSONDB and
	// initialize it without a file.
	Cache CacheStruct

	mu sync.RWMutex
}

func newEmptyCache() CacheStruct {
	return CacheStruct{
		Users:        map[string]*user.User{},
		UsersByEmail: map[string]string{},
		Jobs:         map[string]*job.JobApplication{},
	}
}

func initDBFile(fileName string) error {
	emptyCache := newEmptyCache()

	return writeToJSONFile(fileName, emptyCache)
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return decoder.Decode(cache)
}

// New opens (or creates) the JSON database file and loads it into
// memory.
func New(fileName string) (*JSONDB, error) {
	theDB := JSONDB{
		fileName: fileName,
		Cache:    newEmptyCache(),
	}

	err := parseJSONFile(theDB.fileName, &theDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(theDB.fileName, &theDB.Cache); err != nil {
			return nil, err
		}
	}

	return &theDB, nil
}

// CreateUser inserts a new user, assigning a UUID when the caller did
// not. Returns models.ErrDuplicateEmail when the email is taken.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.Cache.UsersByEmail[usr.Email]; exists {
		return "", models.ErrDuplicateEmail
	}

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}

	stored := *usr
	db.Cache.Users[stored.ID] = &stored
	db.Cache.UsersByEmail[stored.Email] = stored.ID

	return stored.ID, nil
}

// GetUserByEmail fetches a user by email.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.UsersByEmail[email]
	if !found {
		return nil, models.ErrNotFound
	}

	stored := *db.Cache.Users[userID]

	return &stored, nil
}

// GetUserByID fetches a user by id.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, models.ErrNotFound
	}

	stored := *usr

	return &stored, nil
}

// CreateJob inserts a job application record.
func (db *JSONDB) CreateJob(ctx context.Context, theJob *job.JobApplication) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *theJob
	db.Cache.Jobs[stored.ID] = &stored

	return nil
}

// GetJobs lists the owner's jobs ordered by creation time descending.
func (db *JSONDB) GetJobs(ctx context.Context, userID string) ([]job.JobApplication, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []job.JobApplication{}
	for _, theJob := range db.Cache.Jobs {
		if theJob.UserID == userID {
			result = append(result, *theJob)
		}
	}

	sort.Slice(result, func(i, k int) bool {
		if result[i].CreatedAt.Equal(result[k].CreatedAt) {
			return result[i].ID > result[k].ID
		}
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})

	return result, nil
}

// GetJob fetches a single job under the owner-scoping rule.
func (db *JSONDB) GetJob(ctx context.Context, userID, jobID string) (*job.JobApplication, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getOwnedJob(userID, jobID)
}

// getOwnedJob must be called with the mutex held.
func (db *JSONDB) getOwnedJob(userID, jobID string) (*job.JobApplication, error) {
	theJob, found := db.Cache.Jobs[jobID]
	if !found || theJob.UserID != userID {
		return nil, models.ErrNotFound
	}

	stored := *theJob

	return &stored, nil
}

// UpdateJob applies the patch to the owned job and returns the result.
func (db *JSONDB) UpdateJob(
	ctx context.Context,
	userID,
	jobID string,
	patch models.JobPatch,
) (*job.JobApplication, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	theJob, err := db.getOwnedJob(userID, jobID)
	if err != nil {
		return nil, err
	}

	theJob.ApplyPatch(patch)
	db.Cache.Jobs[jobID] = theJob

	stored := *theJob

	return &stored, nil
}

// DeleteJob hard-deletes the owned job.
func (db *JSONDB) DeleteJob(ctx context.Context, userID, jobID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.getOwnedJob(userID, jobID); err != nil {
		return err
	}

	delete(db.Cache.Jobs, jobID)

	return nil
}

// Ping reports the storage as always reachable.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory dataset back to the JSON file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
