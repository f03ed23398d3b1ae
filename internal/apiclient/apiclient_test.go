package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrackhq/jobtrack/internal/models"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func writeJSON(t *testing.T, response http.ResponseWriter, statusCode int, payload any) {
	t.Helper()

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	require.NoError(t, json.NewEncoder(response).Encode(payload))
}

func TestRegisterInstallsToken(t *testing.T) {
	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/auth/register", request.URL.Path)

		var registerRequest models.RegisterRequest
		require.NoError(t, json.NewDecoder(request.Body).Decode(&registerRequest))
		assert.Equal(t, "a@x.com", registerRequest.Email)

		writeJSON(t, response, http.StatusCreated, models.AuthResponse{
			Token: "issued-token",
			User:  models.UserResponse{ID: "user-1", Email: registerRequest.Email},
		})
	})

	client := New(srv.URL)
	authResponse, err := client.Register(context.Background(), "a@x.com", "pw123", nil)
	require.NoError(t, err)

	assert.Equal(t, "issued-token", authResponse.Token)
	assert.Equal(t, "issued-token", client.Token())
}

func TestLoginErrorDecodesBody(t *testing.T) {
	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		writeJSON(t, response, http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid email or password",
		})
	})

	client := New(srv.URL)
	_, err := client.Login(context.Background(), "a@x.com", "wrong")

	require.Error(t, err)
	assert.EqualError(t, err, "Invalid email or password")
	assert.Empty(t, client.Token())
}

func TestGetJobsSendsBearerToken(t *testing.T) {
	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer issued-token", request.Header.Get("Authorization"))
		writeJSON(t, response, http.StatusOK, []map[string]any{
			{"id": "job-1", "company": "Acme", "position": "Eng", "status": "APPLIED"},
		})
	})

	client := New(srv.URL)
	client.SetToken("issued-token")

	jobs, err := client.GetJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, models.StatusApplied, jobs[0].Status)
}

func TestUnauthorizedRunsSessionExpiryHook(t *testing.T) {
	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		writeJSON(t, response, http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid or expired token",
		})
	})

	client := New(srv.URL)
	client.SetToken("stale-token")

	hookCalls := 0
	client.OnSessionExpired(func() { hookCalls++ })

	_, err := client.GetJobs(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, hookCalls)

	// The stale token is dropped so the caller re-authenticates.
	assert.Empty(t, client.Token())

	err = client.DeleteJob(context.Background(), "job-1")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 2, hookCalls)
}

func TestUpdateJobSendsSparsePatch(t *testing.T) {
	status := models.StatusOffer

	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPatch, request.Method)
		assert.Equal(t, "/jobs/job-1", request.URL.Path)

		// Absent fields must not appear in the body at all.
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "OFFER"}, body)

		writeJSON(t, response, http.StatusOK, map[string]any{
			"id": "job-1", "company": "Acme", "position": "Eng", "status": "OFFER",
		})
	})

	client := New(srv.URL)
	client.SetToken("issued-token")

	updated, err := client.UpdateJob(context.Background(), "job-1", models.JobPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffer, updated.Status)
}

func TestCreateJobNotFoundBody(t *testing.T) {
	srv := newStubServer(t, func(response http.ResponseWriter, request *http.Request) {
		writeJSON(t, response, http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
	})

	client := New(srv.URL)
	client.SetToken("issued-token")

	_, err := client.UpdateJob(context.Background(), "gone", models.JobPatch{})
	assert.EqualError(t, err, "Job not found")

	err = client.DeleteJob(context.Background(), "gone")
	assert.EqualError(t, err, "Job not found")
}
