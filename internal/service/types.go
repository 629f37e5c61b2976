// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item.
type Task struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	ProjectID string   `json:"project_id,omitempty"`
	SectionID string   `json:"section_id,omitempty"`
	Labels    []string `json:"labels,omitempty"`
}

// Project represents a Todoist project.
type Project struct {
	ID   string
	Name string
}

// Section represents a section inside a project.
type Section struct {
	ID        string
	ProjectID string
	Name      string
}
