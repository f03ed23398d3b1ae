// Package views renders snapshots of the client state as plain-text
// list, kanban and detail views. Renderers are pure: they take a job
// slice and return a string, issuing no commands and doing no I/O.
package views

import (
	"fmt"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

const kanbanColumnWidth = 24

func jobsWithStatus(jobs []job.JobApplication, status models.Status) []job.JobApplication {
	return funk.Filter(jobs, func(theJob job.JobApplication) bool {
		return theJob.Status == status
	}).([]job.JobApplication)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func truncate(value string, width int) string {
	if len(value) <= width {
		return value
	}

	return value[:width-1] + "…"
}

// RenderList renders the jobs grouped by status, newest first inside
// each group.
func RenderList(jobs []job.JobApplication) string {
	var builder strings.Builder

	for _, status := range models.Statuses {
		group := jobsWithStatus(jobs, status)

		fmt.Fprintf(&builder, "%s (%d)\n", status, len(group))
		for _, theJob := range group {
			fmt.Fprintf(
				&builder,
				"  [%s] %s — %s\n",
				shortID(theJob.ID),
				theJob.Position,
				theJob.Company,
			)
		}
		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n") + "\n"
}

// RenderKanban renders the four status columns side by side.
func RenderKanban(jobs []job.JobApplication) string {
	columns := make([][]string, len(models.Statuses))
	maxRows := 0

	for i, status := range models.Statuses {
		group := jobsWithStatus(jobs, status)

		cells := []string{fmt.Sprintf("%s (%d)", status, len(group))}
		for _, theJob := range group {
			cells = append(cells, truncate(
				fmt.Sprintf("%s @ %s", theJob.Position, theJob.Company),
				kanbanColumnWidth-2,
			))
		}

		columns[i] = cells
		if len(cells) > maxRows {
			maxRows = len(cells)
		}
	}

	var builder strings.Builder
	for row := 0; row < maxRows; row++ {
		for _, column := range columns {
			cell := ""
			if row < len(column) {
				cell = column[row]
			}
			fmt.Fprintf(&builder, "%-*s", kanbanColumnWidth, cell)
		}
		builder.WriteString("\n")

		if row == 0 {
			builder.WriteString(strings.Repeat("-", kanbanColumnWidth*len(columns)))
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// RenderDetail renders a single job with all its fields.
func RenderDetail(theJob job.JobApplication) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Position: %s\n", theJob.Position)
	fmt.Fprintf(&builder, "Company:  %s\n", theJob.Company)
	fmt.Fprintf(&builder, "Status:   %s\n", theJob.Status)

	if theJob.Email != nil {
		fmt.Fprintf(&builder, "Contact:  %s\n", *theJob.Email)
	} else {
		builder.WriteString("Contact:  (none)\n")
	}

	fmt.Fprintf(&builder, "Created:  %s\n", theJob.CreatedAt.Format("January 2, 2006 at 15:04"))
	fmt.Fprintf(&builder, "ID:       %s\n", theJob.ID)

	return builder.String()
}
