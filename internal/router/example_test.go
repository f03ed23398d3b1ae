package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"time"

	"github.com/jobtrackhq/jobtrack/internal/auth"
	"github.com/jobtrackhq/jobtrack/internal/db/memorystorage"
	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/logger"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

func setupExampleServer() *httptest.Server {
	if err := logger.Init("error"); err != nil {
		panic(err)
	}

	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	theAuth := auth.New([]byte("0123456789abcdef0123456789abcdef"), 15*time.Minute)

	return httptest.NewServer(New(db, theAuth, theAuth))
}

func registerExampleUser(serverURL string) *models.AuthResponse {
	body, err := json.Marshal(map[string]string{
		"email":    "example@x.com",
		"password": "pw123",
	})
	if err != nil {
		panic(err)
	}

	resp, err := http.Post(serverURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	authResponse := &models.AuthResponse{}
	if err := json.NewDecoder(resp.Body).Decode(authResponse); err != nil {
		panic(err)
	}

	return authResponse
}

func ExampleRouter_GetHealth() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostAuthRegister() {
	server := setupExampleServer()
	defer server.Close()

	authResponse := registerExampleUser(server.URL)

	re := regexp.MustCompile(`^[\w-]+\.[\w-]+\.[\w-]+$`)

	fmt.Println("Email:", authResponse.User.Email)
	fmt.Println("Token looks like a JWT:", re.MatchString(authResponse.Token))

	// Output:
	// Email: example@x.com
	// Token looks like a JWT: true
}

func ExampleRouter_PostJobs() {
	server := setupExampleServer()
	defer server.Close()

	authResponse := registerExampleUser(server.URL)

	body, err := json.Marshal(map[string]string{
		"company":  "Acme",
		"position": "Eng",
		"status":   "APPLIED",
	})
	if err != nil {
		panic(err)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/jobs", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authResponse.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	created := job.JobApplication{}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Company:", created.Company)
	fmt.Println("Status:", created.Status)

	// Output:
	// Status Code: 201
	// Company: Acme
	// Status: APPLIED
}

func ExampleRouter_GetJobs() {
	server := setupExampleServer()
	defer server.Close()

	authResponse := registerExampleUser(server.URL)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/jobs", nil)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Authorization", "Bearer "+authResponse.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	jobs := []job.JobApplication{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Jobs:", len(jobs))

	// Output:
	// Status Code: 200
	// Jobs: 0
}
