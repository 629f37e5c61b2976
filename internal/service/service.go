// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All Todoist API calls go through this interface.
// Commands never talk HTTP directly.
type Service interface {
	// ListProjects returns all projects in API order.
	ListProjects(ctx context.Context) ([]Project, error)

	// ListSections returns the sections of a project in API order.
	ListSections(ctx context.Context, projectID string) ([]Section, error)

	// ListTasks returns the open tasks of a project.
	// Empty projectID means every project; empty sectionID means every
	// section of the project.
	ListTasks(ctx context.Context, projectID, sectionID string) ([]Task, error)

	// CloseTask marks a task as completed.
	CloseTask(ctx context.Context, taskID string) error
}
