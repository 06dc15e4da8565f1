// ABOUTME: Task CLI commands
// ABOUTME: Status updates for tasks created from CRM tickets
package cli

import (
	"database/sql"
	"flag"
	"fmt"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

// SetTaskStatusCommand moves a task between OPEN, IN_PROGRESS, and DONE
func SetTaskStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-task-status", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-task-status <task-id> <OPEN|IN_PROGRESS|DONE>")
	}

	taskID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}

	status := fs.Arg(1)
	switch status {
	case models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		return fmt.Errorf("invalid status %q", status)
	}

	task, err := db.GetTask(database, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("task not found")
	}

	if err := db.UpdateTaskStatus(database, taskID, status); err != nil {
		return err
	}

	project, err := db.GetProject(database, task.ProjectID)
	if err == nil && project != nil {
		fmt.Printf("Task %q in project %q is now %s\n", task.Title, project.Name, status)
	} else {
		fmt.Printf("Task %q is now %s\n", task.Title, status)
	}

	return nil
}
