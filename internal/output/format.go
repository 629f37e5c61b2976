// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"rewecart/internal/matching"
	"rewecart/internal/service"
	"rewecart/internal/settings"
	"rewecart/internal/transfer"
)

const (
	// Separator is the separator line around section headers.
	Separator = "------------"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {CONTENT}[  @label ...]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	line := fmt.Sprintf("%4d  %s", num, normalizeTitle(task.Content))
	for _, l := range task.Labels {
		line += "  @" + l
	}
	fmt.Fprintln(w, line)
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, normalizeName(title))
	fmt.Fprintln(w, Separator)
}

// FormatProject formats a project with its sections indented below it.
func FormatProject(w io.Writer, project service.Project, sections []service.Section) {
	fmt.Fprintln(w, normalizeName(project.Name))
	for _, s := range sections {
		fmt.Fprintf(w, "    %s\n", normalizeName(s.Name))
	}
}

// FormatCurrent formats the header for the task being transferred.
// Format: "[{I}/{N}] {CONTENT}\n      search: {TERM}\n"
func FormatCurrent(w io.Writer, cur transfer.CurrentTask) {
	fmt.Fprintf(w, "[%d/%d] %s\n", cur.Index+1, cur.Total, normalizeTitle(cur.Name))
	fmt.Fprintf(w, "      search: %s\n", cur.SearchTerm)
}

// FormatCandidate formats a product candidate line.
// Format: "{N:>4}  {NAME}  {PRICE}  ({SCORE}%)[ *]\n"; the star marks the automatic choice.
func FormatCandidate(w io.Writer, num int, c matching.Candidate, auto bool) {
	line := fmt.Sprintf("%4d  %s", num, c.Name)
	if c.Price != "" {
		line += "  " + c.Price
	}
	line += fmt.Sprintf("  (%d%%)", int(c.Similarity*100+0.5))
	if auto {
		line += " *"
	}
	fmt.Fprintln(w, line)
}

// FormatResolution formats every candidate of a resolution and where they came from.
func FormatResolution(w io.Writer, res transfer.Resolution) {
	switch res.Source {
	case transfer.SourceMapping:
		fmt.Fprintln(w, "      saved product:")
	case transfer.SourceFallback:
		fmt.Fprintf(w, "      no products found, search manually: %s\n", res.SearchURL)
	}
	for i := range res.Candidates {
		FormatCandidate(w, i+1, res.Candidates[i], res.Auto == &res.Candidates[i])
	}
}

// FormatChosen formats the product chosen for a task.
func FormatChosen(w io.Writer, c matching.Candidate) {
	if c.Fallback {
		fmt.Fprintf(w, "search manually: %s\n", c.Link)
		return
	}
	line := "added: " + c.Name
	if c.Price != "" {
		line += "  " + c.Price
	}
	fmt.Fprintln(w, line)
	if c.Link != "" {
		fmt.Fprintf(w, "       %s\n", c.Link)
	}
}

// FormatSummary formats the outcome counts of a transfer.
func FormatSummary(w io.Writer, s transfer.Summary) {
	fmt.Fprintf(w, "total:     %d\n", s.Total)
	fmt.Fprintf(w, "completed: %d\n", s.CompletedCount)
	fmt.Fprintf(w, "skipped:   %d\n", s.SkippedCount)
	fmt.Fprintf(w, "refined:   %d\n", s.RefinedCount)
	for i, t := range s.CompletedTasks {
		FormatTask(w, i+1, t)
	}
}

// FormatMappings formats stored mappings sorted by task name.
func FormatMappings(w io.Writer, mappings map[string]matching.Candidate) {
	names := make([]string, 0, len(mappings))
	for name := range mappings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := mappings[name]
		line := fmt.Sprintf("%s -> %s", name, c.Name)
		if c.Price != "" {
			line += "  " + c.Price
		}
		fmt.Fprintln(w, line)
	}
}

// FormatSettings formats every setting as "key = value". The API token is masked.
func FormatSettings(w io.Writer, s settings.Settings) {
	values := map[string]string{
		"similarityThreshold": fmt.Sprintf("%g", s.SimilarityThreshold),
		"maxSearchResults":    fmt.Sprintf("%d", s.MaxSearchResults),
		"fuzzyMatching":       fmt.Sprintf("%t", s.FuzzyMatching),
		"autoOpenCart":        fmt.Sprintf("%t", s.AutoOpenCart),
		"showNotifications":   fmt.Sprintf("%t", s.ShowNotifications),
		"defaultTag":          s.DefaultTag,
		"apiToken":            MaskToken(s.APIToken),
	}
	for _, key := range settings.Keys() {
		fmt.Fprintf(w, "%-20s = %s\n", key, values[key])
	}
}

// MaskToken hides all but the last four characters of a token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeName normalizes a project or section name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
