// Package user defines the user model used throughout the application,
// particularly for authentication and ownership of job applications.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string

	// Email is unique across all users and doubles as the login name.
	Email string

	// PasswordHash is the bcrypt hash of the password. The plaintext
	// is never stored and the hash is never serialized to clients.
	PasswordHash string

	// Name is an optional display name.
	Name *string
}
