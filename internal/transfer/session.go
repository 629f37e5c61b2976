// Package transfer implements the task-by-task transfer of shopping tasks
// into storefront products.
package transfer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"rewecart/internal/matching"
	"rewecart/internal/service"
)

var (
	// ErrNoActiveSession is returned when no transfer has been started.
	ErrNoActiveSession = errors.New("no active transfer")

	// ErrExhausted is returned when every task has been handled.
	ErrExhausted = errors.New("transfer complete: no tasks left")

	// ErrEmptyTerm is returned by Refine for a blank search term.
	ErrEmptyTerm = errors.New("search term required")
)

// State is the lifecycle state of a transfer.
type State int

const (
	Idle State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// Session is one pass over a fixed list of tasks. Every task before
// CurrentIndex is in exactly one of Completed and Skipped.
type Session struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"startedAt"`
	Tasks        []service.Task    `json:"tasks"`
	CurrentIndex int               `json:"currentIndex"`
	Completed    []service.Task    `json:"completed"`
	Skipped      []service.Task    `json:"skipped"`
	Refined      map[string]string `json:"refined"`

	// Closed lists the task IDs already closed on the task service.
	Closed []string `json:"closed,omitempty"`
}

// CurrentTask describes the task at the current index.
type CurrentTask struct {
	Task       service.Task
	Name       string
	SearchTerm string
	Index      int
	Total      int

	// Refined is set when SearchTerm was given by the user.
	Refined bool
}

// Summary counts the outcomes of a transfer so far.
type Summary struct {
	Total          int
	CompletedCount int
	SkippedCount   int
	RefinedCount   int
	CompletedTasks []service.Task
}

// Start begins a transfer over a snapshot of tasks. An empty list is valid
// and is immediately exhausted.
func Start(tasks []service.Task) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Tasks:     append([]service.Task(nil), tasks...),
		Completed: []service.Task{},
		Skipped:   []service.Task{},
		Refined:   map[string]string{},
	}
}

// State reports the lifecycle state. A nil session is Idle.
func (s *Session) State() State {
	switch {
	case s == nil:
		return Idle
	case s.CurrentIndex >= len(s.Tasks):
		return Completed
	default:
		return InProgress
	}
}

// Total returns the number of tasks in the transfer.
func (s *Session) Total() int {
	if s == nil {
		return 0
	}
	return len(s.Tasks)
}

// Current returns the task at the current index with its effective search
// term: the refined term for its name if any, else the sanitized name.
func (s *Session) Current() (CurrentTask, error) {
	if s == nil {
		return CurrentTask{}, ErrNoActiveSession
	}
	if s.CurrentIndex >= len(s.Tasks) {
		return CurrentTask{}, ErrExhausted
	}

	task := s.Tasks[s.CurrentIndex]
	term, ok := s.Refined[task.Content]
	if !ok {
		term = matching.Sanitize(task.Content)
	}

	return CurrentTask{
		Task:       task,
		Name:       task.Content,
		SearchTerm: term,
		Index:      s.CurrentIndex,
		Total:      len(s.Tasks),
		Refined:    ok,
	}, nil
}

// Skip records the current task as skipped and moves on.
func (s *Session) Skip() error {
	task, err := s.take()
	if err != nil {
		return err
	}
	s.Skipped = append(s.Skipped, task)
	return nil
}

// Advance records the current task as completed and moves on.
func (s *Session) Advance() error {
	task, err := s.take()
	if err != nil {
		return err
	}
	s.Completed = append(s.Completed, task)
	return nil
}

func (s *Session) take() (service.Task, error) {
	if s == nil {
		return service.Task{}, ErrNoActiveSession
	}
	if s.CurrentIndex >= len(s.Tasks) {
		return service.Task{}, ErrExhausted
	}
	task := s.Tasks[s.CurrentIndex]
	s.CurrentIndex++
	return task, nil
}

// Refine replaces the search term used for tasks named originalName.
// The key is the exact, case-sensitive display name. The index is unchanged.
func (s *Session) Refine(originalName, newTerm string) error {
	if s == nil {
		return ErrNoActiveSession
	}
	newTerm = strings.TrimSpace(newTerm)
	if newTerm == "" {
		return ErrEmptyTerm
	}
	if s.Refined == nil {
		s.Refined = map[string]string{}
	}
	s.Refined[originalName] = newTerm
	return nil
}

// Summary returns the outcome counts. It is valid at any point.
func (s *Session) Summary() Summary {
	if s == nil {
		return Summary{}
	}
	return Summary{
		Total:          len(s.Tasks),
		CompletedCount: len(s.Completed),
		SkippedCount:   len(s.Skipped),
		RefinedCount:   len(s.Refined),
		CompletedTasks: append([]service.Task(nil), s.Completed...),
	}
}

// MarkClosed records ids as closed on the task service.
func (s *Session) MarkClosed(ids []string) {
	for _, id := range ids {
		if !s.IsClosed(id) {
			s.Closed = append(s.Closed, id)
		}
	}
}

// IsClosed reports whether id was already closed on the task service.
func (s *Session) IsClosed(id string) bool {
	for _, c := range s.Closed {
		if c == id {
			return true
		}
	}
	return false
}
