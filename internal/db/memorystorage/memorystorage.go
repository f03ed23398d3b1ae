// Package memorystorage provides a purely in-memory storage backend.
// It reuses the jsondb cache without ever touching the filesystem and
// is the default backend when neither a DSN nor a file is configured.
package memorystorage

import (
	"context"

	"github.com/jobtrackhq/jobtrack/internal/db/jsondb"
	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

// MemoryStorage is a jsondb.JSONDB without a backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:        map[string]*user.User{},
				UsersByEmail: map[string]string{},
				Jobs:         map[string]*job.JobApplication{},
			},
		},
	}, nil
}

// Close is a no-op since there is no file to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping reports the storage as always reachable.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
