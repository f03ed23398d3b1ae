// Package job defines the job-application record, the central entity of
// the tracker.
package job

import (
	"time"

	"github.com/jobtrackhq/jobtrack/internal/models"
)

// JobApplication is a single tracked application, always owned by
// exactly one user. It is visible and mutable only through requests
// authenticated as that user.
type JobApplication struct {
	ID       string        `json:"id"`
	Company  string        `json:"company"`
	Position string        `json:"position"`
	Email    *string       `json:"email"`
	Status   models.Status `json:"status"`

	// CreatedAt is assigned server-side at creation, in UTC.
	CreatedAt time.Time `json:"createdAt"`

	// UserID is the identifier of the owning user.
	UserID string `json:"userId"`
}

// ApplyPatch overwrites the fields carried by the patch and leaves the
// rest untouched. An empty-string email in the patch clears the contact
// email.
func (j *JobApplication) ApplyPatch(patch models.JobPatch) {
	if patch.Company != nil {
		j.Company = *patch.Company
	}
	if patch.Position != nil {
		j.Position = *patch.Position
	}
	if patch.Status != nil {
		j.Status = *patch.Status
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			j.Email = nil
		} else {
			email := *patch.Email
			j.Email = &email
		}
	}
}
