// Package router wires the HTTP routes of the service: health and
// readiness probes, registration/login, and the owner-scoped CRUD over
// job applications. Handlers validate the payload shape, delegate to
// auth and storage, and map sentinel errors to status codes; they keep
// no state of their own.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobtrackhq/jobtrack/internal/auth"
	"github.com/jobtrackhq/jobtrack/internal/authenticator"
	"github.com/jobtrackhq/jobtrack/internal/gzippedhttp"
	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/logger"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type jobKeeper interface {
	CreateJob(ctx context.Context, theJob *job.JobApplication) error
	GetJobs(ctx context.Context, userID string) ([]job.JobApplication, error)
	UpdateJob(ctx context.Context, userID, jobID string, patch models.JobPatch) (*job.JobApplication, error)
	DeleteJob(ctx context.Context, userID, jobID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	jobKeeper
	pinger
}

type tokenIssuer interface {
	BuildJWTString(userID, email string) (string, error)
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	db       storage
	tokens   tokenIssuer
	validate *validator.Validate
}

func respondJSON(response http.ResponseWriter, statusCode int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response payload: ", zap.Error(err))
	}
}

func respondError(response http.ResponseWriter, statusCode int, message string) {
	respondJSON(response, statusCode, models.ErrorResponse{Error: message})
}

// GetHealth reports liveness of the process.
func (router *Router) GetHealth(response http.ResponseWriter, request *http.Request) {
	respondJSON(response, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPing reports readiness by pinging the storage backend.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.db.Ping()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "storage unavailable")
		return
	}
	response.WriteHeader(http.StatusOK)
}

// GetProtected is a token smoke endpoint: any authenticated caller gets
// a confirmation body.
func (router *Router) GetProtected(response http.ResponseWriter, request *http.Request) {
	respondJSON(response, http.StatusOK, map[string]string{"message": "authorized"})
}

func (router *Router) issueAuthResponse(
	response http.ResponseWriter,
	statusCode int,
	usr *user.User,
) {
	token, err := router.tokens.BuildJWTString(usr.ID, usr.Email)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.tokens.BuildJWTString()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(response, statusCode, models.AuthResponse{
		Token: token,
		User: models.UserResponse{
			ID:    usr.ID,
			Email: usr.Email,
			Name:  usr.Name,
		},
	})
}

// PostAuthRegister handles POST /auth/register.
func (router *Router) PostAuthRegister(response http.ResponseWriter, request *http.Request) {
	var registerRequest models.RegisterRequest
	if err := json.NewDecoder(request.Body).Decode(&registerRequest); err != nil {
		respondError(response, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if registerRequest.Email == "" || registerRequest.Password == "" {
		respondError(response, http.StatusBadRequest, "Email and password are required")
		return
	}

	passwordHash, err := auth.HashPassword(registerRequest.Password)
	if err != nil {
		logger.Log.Debugln("Error calling the `auth.HashPassword()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	usr := &user.User{
		ID:           uuid.New().String(),
		Email:        registerRequest.Email,
		PasswordHash: passwordHash,
		Name:         registerRequest.Name,
	}

	if _, err := router.db.CreateUser(request.Context(), usr); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			respondError(response, http.StatusConflict, "Email already in use")
			return
		}
		logger.Log.Debugln("Error calling the `router.db.CreateUser()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	router.issueAuthResponse(response, http.StatusCreated, usr)
}

// PostAuthLogin handles POST /auth/login. An unknown email and a wrong
// password produce byte-identical responses to prevent enumeration.
func (router *Router) PostAuthLogin(response http.ResponseWriter, request *http.Request) {
	var loginRequest models.LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&loginRequest); err != nil {
		respondError(response, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if loginRequest.Email == "" || loginRequest.Password == "" {
		respondError(response, http.StatusBadRequest, "Email and password are required")
		return
	}

	usr, err := router.db.GetUserByEmail(request.Context(), loginRequest.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Log.Debugln("Error calling the `router.db.GetUserByEmail()`: ", zap.Error(err))
			respondError(response, http.StatusInternalServerError, "internal error")
			return
		}
		respondError(response, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !auth.CheckPassword(usr.PasswordHash, loginRequest.Password) {
		respondError(response, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	router.issueAuthResponse(response, http.StatusOK, usr)
}

// GetJobs handles GET /jobs: all jobs of the caller, newest first.
func (router *Router) GetJobs(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		respondError(response, http.StatusUnauthorized, "Missing or invalid token")
		return
	}

	jobs, err := router.db.GetJobs(request.Context(), userID)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.db.GetJobs()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(response, http.StatusOK, jobs)
}

// PostJobs handles POST /jobs.
func (router *Router) PostJobs(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		respondError(response, http.StatusUnauthorized, "Missing or invalid token")
		return
	}

	var createRequest models.CreateJobRequest
	if err := json.NewDecoder(request.Body).Decode(&createRequest); err != nil {
		respondError(response, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := router.validate.Struct(createRequest); err != nil {
		respondError(response, http.StatusBadRequest, "Company, position and a valid contact email are required")
		return
	}

	if !createRequest.Status.IsValid() {
		respondError(response, http.StatusBadRequest, "Invalid status")
		return
	}

	email := createRequest.Email
	if email != nil && *email == "" {
		email = nil
	}

	theJob := &job.JobApplication{
		ID:        uuid.New().String(),
		Company:   createRequest.Company,
		Position:  createRequest.Position,
		Email:     email,
		Status:    createRequest.Status,
		CreatedAt: time.Now().UTC(),
		UserID:    userID,
	}

	if err := router.db.CreateJob(request.Context(), theJob); err != nil {
		logger.Log.Debugln("Error calling the `router.db.CreateJob()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(response, http.StatusCreated, theJob)
}

func validatePatch(patch models.JobPatch) string {
	if patch.Company != nil && *patch.Company == "" {
		return "Company must not be empty"
	}
	if patch.Position != nil && *patch.Position == "" {
		return "Position must not be empty"
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return "Invalid status"
	}

	return ""
}

// PatchJobsJobID handles PATCH /jobs/{jobID}. Only fields present in
// the body are applied; an empty-string email clears the contact email,
// while empty company/position are rejected.
func (router *Router) PatchJobsJobID(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		respondError(response, http.StatusUnauthorized, "Missing or invalid token")
		return
	}

	var patch models.JobPatch
	if err := json.NewDecoder(request.Body).Decode(&patch); err != nil {
		respondError(response, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if message := validatePatch(patch); message != "" {
		respondError(response, http.StatusBadRequest, message)
		return
	}

	jobID := chi.URLParam(request, "jobID")
	updated, err := router.db.UpdateJob(request.Context(), userID, jobID, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondError(response, http.StatusNotFound, "Job not found")
			return
		}
		logger.Log.Debugln("Error calling the `router.db.UpdateJob()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(response, http.StatusOK, updated)
}

// DeleteJobsJobID handles DELETE /jobs/{jobID}.
func (router *Router) DeleteJobsJobID(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		respondError(response, http.StatusUnauthorized, "Missing or invalid token")
		return
	}

	jobID := chi.URLParam(request, "jobID")
	if err := router.db.DeleteJob(request.Context(), userID, jobID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondError(response, http.StatusNotFound, "Job not found")
			return
		}
		logger.Log.Debugln("Error calling the `router.db.DeleteJob()`: ", zap.Error(err))
		respondError(response, http.StatusInternalServerError, "internal error")
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// corsMiddleware mirrors the permissive CORS defaults the browser
// client expects, including the preflight shortcut.
func corsMiddleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Access-Control-Allow-Origin", "*")
		response.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		response.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if request.Method == http.MethodOptions {
			response.WriteHeader(http.StatusNoContent)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// New assembles the chi mux with middleware and all routes.
func New(
	db storage,
	tokens tokenIssuer,
	theAuthenticator authenticator.Authenticator,
) http.Handler {
	myRouter := &Router{
		db:       db,
		tokens:   tokens,
		validate: validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(
		logger.WithLoggingHTTPMiddleware,
		corsMiddleware,
		gzippedhttp.UngzipRequest,
	)

	mux.Get(`/health`, myRouter.GetHealth)
	mux.Get(`/ping`, myRouter.GetPing)

	mux.Post(`/auth/register`, myRouter.PostAuthRegister)
	mux.Post(`/auth/login`, myRouter.PostAuthLogin)

	mux.With(theAuthenticator.Authenticate).Get(`/protected`, myRouter.GetProtected)

	mux.Route(`/jobs`, func(jobs chi.Router) {
		jobs.Use(
			theAuthenticator.Authenticate,
			gzippedhttp.GzipResponse,
		)
		jobs.Get(`/`, myRouter.GetJobs)
		jobs.Post(`/`, myRouter.PostJobs)
		jobs.Patch(`/{jobID}`, myRouter.PatchJobsJobID)
		jobs.Delete(`/{jobID}`, myRouter.DeleteJobsJobID)
	})

	return mux
}
