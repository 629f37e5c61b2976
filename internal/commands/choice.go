package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ChoiceKind is what the user asked for at the interactive prompt.
type ChoiceKind int

const (
	ChoicePick ChoiceKind = iota
	ChoiceAuto
	ChoiceSkip
	ChoiceRefine
	ChoiceQuit
)

// Choice is a parsed prompt answer.
type Choice struct {
	Kind ChoiceKind

	// Number is the 1-based candidate for ChoicePick.
	Number int

	// Term is the new search term for ChoiceRefine.
	Term string
}

// ErrChoiceRequired indicates an empty answer with no automatic candidate.
var ErrChoiceRequired = errors.New("choice required")

// ParseChoice parses one line typed at the transfer prompt.
//
// Parsing rules:
// 1. Empty line → the automatic candidate
// 2. All digits → pick that candidate (1-based)
// 3. "s" or "skip" → skip the task
// 4. "r <term...>" or "refine <term...>" → refine the search term
// 5. "q" or "quit" → stop and keep the session
// 6. Otherwise → error: invalid choice: <line>
func ParseChoice(line string) (Choice, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Choice{Kind: ChoiceAuto}, nil
	}

	first := strings.ToLower(fields[0])
	switch {
	case isAllDigits(first):
		n, err := strconv.Atoi(first)
		if err != nil || n < 1 {
			return Choice{}, fmt.Errorf("invalid choice: %s", fields[0])
		}
		return Choice{Kind: ChoicePick, Number: n}, nil
	case first == "s" || first == "skip":
		return Choice{Kind: ChoiceSkip}, nil
	case first == "q" || first == "quit":
		return Choice{Kind: ChoiceQuit}, nil
	case first == "r" || first == "refine":
		term := strings.Join(fields[1:], " ")
		if term == "" {
			return Choice{}, errors.New("search term required")
		}
		return Choice{Kind: ChoiceRefine, Term: term}, nil
	}

	return Choice{}, fmt.Errorf("invalid choice: %s", strings.TrimSpace(line))
}

// parseCandidateNumber parses the optional <n> argument of pick.
// No argument selects the automatic candidate.
func parseCandidateNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	if len(args) > 1 || !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid candidate number: %s", strings.Join(args, " "))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid candidate number: %s", args[0])
	}
	return n, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
