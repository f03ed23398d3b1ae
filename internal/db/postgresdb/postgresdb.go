// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting user accounts and job applications.
// Schema management is done with goose migrations at startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the storage
// interface. All job queries are scoped by the owning user id.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New establishes a connection to the PostgreSQL database, runs schema
// migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

func (db *PostgresDB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.connectionTimeout)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser inserts a new user record into the database.
// Returns models.ErrDuplicateEmail when the email is already taken; the
// duplicate check is the unique index itself, so there is no window
// between check and insert.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (id, email, password_hash, name)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
		usr.Name,
	)

	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrDuplicateEmail
		}
		return "", err
	}

	return userIDFromDB, nil
}

func (db *PostgresDB) getUserByCondition(
	ctx context.Context,
	condition string,
	arg string,
) (*user.User, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, name FROM users WHERE `+condition,
		arg,
	)

	var (
		usr  user.User
		name sql.NullString
	)
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if name.Valid {
		usr.Name = &name.String
	}

	return &usr, nil
}

// GetUserByEmail fetches a user by their unique email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return db.getUserByCondition(ctx, `email = $1`, email)
}

// GetUserByID fetches a user by their UUID.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	return db.getUserByCondition(ctx, `id = $1`, userID)
}

// CreateJob inserts a job application record.
func (db *PostgresDB) CreateJob(ctx context.Context, theJob *job.JobApplication) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO jobs (id, company, position, email, status, created_at, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		theJob.ID,
		theJob.Company,
		theJob.Position,
		theJob.Email,
		string(theJob.Status),
		theJob.CreatedAt,
		theJob.UserID,
	)

	return err
}

func scanJob(row interface{ Scan(dest ...any) error }) (*job.JobApplication, error) {
	var (
		theJob job.JobApplication
		email  sql.NullString
		status string
	)
	err := row.Scan(
		&theJob.ID,
		&theJob.Company,
		&theJob.Position,
		&email,
		&status,
		&theJob.CreatedAt,
		&theJob.UserID,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		theJob.Email = &email.String
	}
	theJob.Status = models.Status(status)
	theJob.CreatedAt = theJob.CreatedAt.UTC()

	return &theJob, nil
}

// GetJobs lists the owner's jobs ordered by creation time descending.
func (db *PostgresDB) GetJobs(ctx context.Context, userID string) ([]job.JobApplication, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, company, position, email, status, created_at, user_id
			FROM jobs
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []job.JobApplication{}
	for rows.Next() {
		theJob, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *theJob)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetJob fetches a single job under the owner-scoping rule: a job owned
// by another user is indistinguishable from an absent one.
func (db *PostgresDB) GetJob(ctx context.Context, userID, jobID string) (*job.JobApplication, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, company, position, email, status, created_at, user_id
			FROM jobs
			WHERE id = $1 AND user_id = $2`,
		jobID,
		userID,
	)

	theJob, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return theJob, nil
}

// UpdateJob applies only the non-nil fields of the patch and returns
// the updated record. An empty-string email is stored as NULL.
func (db *PostgresDB) UpdateJob(
	ctx context.Context,
	userID,
	jobID string,
	patch models.JobPatch,
) (*job.JobApplication, error) {
	if patch.IsEmpty() {
		return db.GetJob(ctx, userID, jobID)
	}

	assignments := []string{}
	args := []any{}

	appendAssignment := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Company != nil {
		appendAssignment("company", *patch.Company)
	}
	if patch.Position != nil {
		appendAssignment("position", *patch.Position)
	}
	if patch.Status != nil {
		appendAssignment("status", string(*patch.Status))
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			appendAssignment("email", nil)
		} else {
			appendAssignment("email", *patch.Email)
		}
	}

	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	args = append(args, jobID, userID)
	row := db.database.QueryRowContext(
		ctx,
		fmt.Sprintf(
			`UPDATE jobs SET %s
				WHERE id = $%d AND user_id = $%d
				RETURNING id, company, position, email, status, created_at, user_id`,
			strings.Join(assignments, ", "),
			len(args)-1,
			len(args),
		),
		args...,
	)

	theJob, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return theJob, nil
}

// DeleteJob hard-deletes the owned job. A second delete of the same id
// is models.ErrNotFound again, never a silent success.
func (db *PostgresDB) DeleteJob(ctx context.Context, userID, jobID string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM jobs WHERE id = $1 AND user_id = $2`,
		jobID,
		userID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Ping verifies the database connection is alive.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
