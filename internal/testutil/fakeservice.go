// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"rewecart/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	projects []service.Project
	sections map[string][]service.Section // projectID -> sections
	tasks    []service.Task
	closed   []string

	// Error injection for testing
	ListProjectsErr error
	ListSectionsErr error
	ListTasksErr    error
	CloseTaskErr    map[string]error // taskID -> error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		sections:     make(map[string][]service.Section),
		CloseTaskErr: make(map[string]error),
	}
}

// AddProject adds a project to the fake service.
func (f *FakeService) AddProject(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, service.Project{ID: id, Name: name})
}

// AddSection adds a section to a project.
func (f *FakeService) AddSection(projectID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections[projectID] = append(f.sections[projectID], service.Section{ID: id, ProjectID: projectID, Name: name})
}

// AddTask adds an open task.
func (f *FakeService) AddTask(projectID, sectionID, taskID, content string, labels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:        taskID,
		Content:   content,
		ProjectID: projectID,
		SectionID: sectionID,
		Labels:    labels,
	})
}

// Closed returns the IDs closed so far, in call order.
func (f *FakeService) Closed() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.closed...)
}

// ListProjects implements service.Service.
func (f *FakeService) ListProjects(ctx context.Context) ([]service.Project, error) {
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Project, len(f.projects))
	copy(result, f.projects)
	return result, nil
}

// ListSections implements service.Service.
func (f *FakeService) ListSections(ctx context.Context, projectID string) ([]service.Section, error) {
	if f.ListSectionsErr != nil {
		return nil, f.ListSectionsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Section(nil), f.sections[projectID]...), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, projectID, sectionID string) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Task
	for _, t := range f.tasks {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		if sectionID != "" && t.SectionID != sectionID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// CloseTask implements service.Service. Closed tasks disappear from ListTasks.
func (f *FakeService) CloseTask(ctx context.Context, taskID string) error {
	if err, ok := f.CloseTaskErr[taskID]; ok && err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			f.closed = append(f.closed, taskID)
			return nil
		}
	}
	return &service.FetchError{Op: "close task " + taskID, StatusCode: 404}
}
