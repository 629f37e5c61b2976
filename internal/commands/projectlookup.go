package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"rewecart/internal/service"
)

// resolveProject finds a project by name (case-insensitive, trimmed).
func resolveProject(ctx context.Context, svc service.Service, name string) (service.Project, error) {
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return service.Project{}, err
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []service.Project
	for _, p := range projects {
		if strings.ToLower(strings.TrimSpace(p.Name)) == nameLower {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return service.Project{}, fmt.Errorf("project %w: %s", service.ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.Project{}, fmt.Errorf("%w project name: %s", service.ErrAmbiguous, name)
	}
}

// resolveSection finds a section of a project by name (case-insensitive, trimmed).
func resolveSection(ctx context.Context, svc service.Service, projectID, name string) (service.Section, error) {
	sections, err := svc.ListSections(ctx, projectID)
	if err != nil {
		return service.Section{}, err
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []service.Section
	for _, s := range sections {
		if strings.ToLower(strings.TrimSpace(s.Name)) == nameLower {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return service.Section{}, fmt.Errorf("section %w: %s", service.ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.Section{}, fmt.Errorf("%w section name: %s", service.ErrAmbiguous, name)
	}
}

// taskSelection is the --project/--section/--tag trio shared by the
// commands that fetch tasks.
type taskSelection struct {
	project string
	section string
	tag     string
}

func (sel *taskSelection) register(fs *flag.FlagSet) {
	fs.StringVar(&sel.project, "project", "", "")
	fs.StringVar(&sel.project, "p", "", "")
	fs.StringVar(&sel.section, "section", "", "")
	fs.StringVar(&sel.tag, "tag", "", "")
	fs.StringVar(&sel.tag, "t", "", "")
}

// fetch lists the selected tasks and filters them by tag. An empty --tag
// falls back to defaultTag.
func (sel taskSelection) fetch(ctx context.Context, svc service.Service, defaultTag string) ([]service.Task, error) {
	if sel.section != "" && sel.project == "" {
		return nil, usageErrorf("--section requires --project")
	}

	var projectID, sectionID string
	if sel.project != "" {
		project, err := resolveProject(ctx, svc, sel.project)
		if err != nil {
			return nil, err
		}
		projectID = project.ID
	}
	if sel.section != "" {
		section, err := resolveSection(ctx, svc, projectID, sel.section)
		if err != nil {
			return nil, err
		}
		sectionID = section.ID
	}

	tasks, err := svc.ListTasks(ctx, projectID, sectionID)
	if err != nil {
		return nil, err
	}

	tag := sel.tag
	if tag == "" {
		tag = defaultTag
	}
	return service.FilterByTag(tasks, tag), nil
}
