// Package models defines the wire-level request/response structures,
// the job status enumeration, and the sentinel errors shared between
// the storage backends and the HTTP layer.
package models

import "errors"

// Status is the stage of a job application in the pipeline.
type Status string

// The four stages a job application can be in.
const (
	StatusApplied   Status = "APPLIED"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusRejected  Status = "REJECTED"
)

// Statuses lists all valid stages in pipeline order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// IsValid reports whether s is one of the known stages.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of a user record.
// The password hash never leaves the server.
type UserResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// AuthResponse is returned by both registration and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateJobRequest is the payload of POST /jobs.
type CreateJobRequest struct {
	Company  string  `json:"company" validate:"required"`
	Position string  `json:"position" validate:"required"`
	Status   Status  `json:"status" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// JobPatch is the payload of PATCH /jobs/{jobID}.
// Nil fields were absent from the request and must stay untouched.
// An empty-string Email clears the stored contact email.
type JobPatch struct {
	Company  *string `json:"company,omitempty"`
	Position *string `json:"position,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p JobPatch) IsEmpty() bool {
	return p.Company == nil && p.Position == nil && p.Status == nil && p.Email == nil
}

// ErrorResponse is the uniform error body: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Sentinel errors returned by storage and auth components.
// The router maps them to HTTP status codes at the boundary.
var (
	// ErrNotFound covers both genuinely absent records and records
	// owned by another user, so existence is never confirmed to
	// non-owners.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail signals a registration with an already
	// registered email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidToken covers malformed, badly signed and expired
	// bearer tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")
)
