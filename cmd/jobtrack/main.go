package main

import (
	"log"

	"github.com/jobtrackhq/jobtrack/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalf("failed to initialize the application: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
