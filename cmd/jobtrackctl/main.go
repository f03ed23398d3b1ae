// Command jobtrackctl is the terminal client of the job tracker. It
// drives the client state store and renders list, kanban and detail
// views of the session's jobs. The bearer token is kept in a local
// file between invocations, the way the web client keeps it in local
// storage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobtrackhq/jobtrack/internal/apiclient"
	"github.com/jobtrackhq/jobtrack/internal/clientstate"
	"github.com/jobtrackhq/jobtrack/internal/config"
	"github.com/jobtrackhq/jobtrack/internal/models"
	"github.com/jobtrackhq/jobtrack/internal/views"
)

const usage = `usage: jobtrackctl [flags] <command> [args]

commands:
  register <email> <password> [name]
  login <email> <password>
  list
  kanban
  show <id>
  add <company> <position> [status] [contact-email]
  set-status <id> <status>
  edit <id> company|position|email <value>
  rm <id>
  move <id> <status> [status...]
`

func tokenFileName() string {
	if fromEnv := os.Getenv("JOBTRACK_TOKEN_FILE"); fromEnv != "" {
		return fromEnv
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobtrack_token"
	}

	return filepath.Join(home, ".jobtrack_token")
}

func loadToken() string {
	data, err := os.ReadFile(tokenFileName())
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func saveToken(token string) error {
	return os.WriteFile(tokenFileName(), []byte(token), 0600)
}

func clearToken() {
	_ = os.Remove(tokenFileName())
}

func parseStatus(raw string) (models.Status, error) {
	status := models.Status(strings.ToUpper(raw))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown status %q (expected one of %v)", raw, models.Statuses)
	}

	return status, nil
}

// resolveJobID expands a short id prefix into the full id of exactly
// one job in the session list.
func resolveJobID(store *clientstate.Store, prefix string) (string, error) {
	matches := []string{}
	for _, theJob := range store.Jobs() {
		if strings.HasPrefix(theJob.ID, prefix) {
			matches = append(matches, theJob.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no job matches id %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Print(usage)
		return errors.New("no command given")
	}
	command, commandArgs := args[0], args[1:]

	client := apiclient.New(cfg.APIBaseURL)
	client.SetToken(loadToken())
	client.OnSessionExpired(func() {
		clearToken()
		fmt.Fprintln(os.Stderr, "Session expired. Please login again.")
	})

	store := clientstate.New(client)
	ctx := context.Background()

	switch command {
	case "register":
		if len(commandArgs) < 2 {
			return errors.New("register needs <email> <password> [name]")
		}
		var name *string
		if len(commandArgs) > 2 {
			name = &commandArgs[2]
		}
		authResponse, err := client.Register(ctx, commandArgs[0], commandArgs[1], name)
		if err != nil {
			return err
		}
		if err := saveToken(authResponse.Token); err != nil {
			return err
		}
		fmt.Printf("Registered as %s\n", authResponse.User.Email)
		return nil

	case "login":
		if len(commandArgs) != 2 {
			return errors.New("login needs <email> <password>")
		}
		authResponse, err := client.Login(ctx, commandArgs[0], commandArgs[1])
		if err != nil {
			return err
		}
		if err := saveToken(authResponse.Token); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", authResponse.User.Email)
		return nil
	}

	// Every remaining command operates on the loaded session list.
	if err := store.Load(ctx); err != nil {
		return err
	}

	switch command {
	case "list":
		fmt.Print(views.RenderList(store.Jobs()))

	case "kanban":
		fmt.Print(views.RenderKanban(store.Jobs()))

	case "show":
		if len(commandArgs) != 1 {
			return errors.New("show needs <id>")
		}
		jobID, err := resolveJobID(store, commandArgs[0])
		if err != nil {
			return err
		}
		theJob, err := store.Find(jobID)
		if err != nil {
			return err
		}
		fmt.Print(views.RenderDetail(*theJob))

	case "add":
		if len(commandArgs) < 2 {
			return errors.New("add needs <company> <position> [status] [contact-email]")
		}
		createRequest := models.CreateJobRequest{
			Company:  commandArgs[0],
			Position: commandArgs[1],
			Status:   models.StatusApplied,
		}
		if len(commandArgs) > 2 {
			createRequest.Status, err = parseStatus(commandArgs[2])
			if err != nil {
				return err
			}
		}
		if len(commandArgs) > 3 {
			createRequest.Email = &commandArgs[3]
		}
		if err := store.Add(ctx, createRequest); err != nil {
			return err
		}
		fmt.Print(views.RenderList(store.Jobs()))

	case "set-status":
		if len(commandArgs) != 2 {
			return errors.New("set-status needs <id> <status>")
		}
		jobID, err := resolveJobID(store, commandArgs[0])
		if err != nil {
			return err
		}
		status, err := parseStatus(commandArgs[1])
		if err != nil {
			return err
		}
		if err := store.ChangeStatus(ctx, jobID, status); err != nil {
			return err
		}
		fmt.Print(views.RenderKanban(store.Jobs()))

	case "edit":
		if len(commandArgs) != 3 {
			return errors.New("edit needs <id> company|position|email <value>")
		}
		jobID, err := resolveJobID(store, commandArgs[0])
		if err != nil {
			return err
		}
		field, value := commandArgs[1], commandArgs[2]
		switch field {
		case "company":
			err = store.EditCompany(ctx, jobID, value)
		case "position":
			err = store.EditPosition(ctx, jobID, value)
		case "email":
			err = store.EditEmail(ctx, jobID, value)
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		if err != nil {
			return err
		}
		theJob, err := store.Find(jobID)
		if err != nil {
			return err
		}
		fmt.Print(views.RenderDetail(*theJob))

	case "rm":
		if len(commandArgs) != 1 {
			return errors.New("rm needs <id>")
		}
		jobID, err := resolveJobID(store, commandArgs[0])
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, jobID); err != nil {
			return err
		}
		fmt.Print(views.RenderList(store.Jobs()))

	case "move":
		if len(commandArgs) < 2 {
			return errors.New("move needs <id> <status> [status...]")
		}
		jobID, err := resolveJobID(store, commandArgs[0])
		if err != nil {
			return err
		}
		if err := store.BeginDrag(jobID); err != nil {
			return err
		}
		for _, raw := range commandArgs[1:] {
			status, err := parseStatus(raw)
			if err != nil {
				return err
			}
			if err := store.DragOver(status); err != nil {
				return err
			}
		}
		if err := store.EndDrag(ctx); err != nil {
			return err
		}
		fmt.Print(views.RenderKanban(store.Jobs()))

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalln("Error:", err)
	}
}
