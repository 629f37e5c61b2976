package service

import "strings"

// FilterByTag returns the tasks carrying a label that matches tag.
// The tag may carry a leading "@". Matching is case-insensitive and accepts
// equality or containment in either direction. An empty tag keeps every task.
func FilterByTag(tasks []Task, tag string) []Task {
	want := normalizeLabel(tag)
	if want == "" {
		return tasks
	}

	var result []Task
	for _, t := range tasks {
		if HasTag(t, want) {
			result = append(result, t)
		}
	}
	return result
}

// HasTag reports whether one of the task's labels matches tag.
func HasTag(task Task, tag string) bool {
	want := normalizeLabel(tag)
	for _, label := range task.Labels {
		have := normalizeLabel(label)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
