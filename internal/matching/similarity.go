package matching

import (
	"strings"
	"unicode/utf8"
)

const (
	// ExactScore is returned for case-insensitive equal names.
	ExactScore = 1.0

	// ContainsScore is returned when the candidate contains the query.
	ContainsScore = 0.9

	// ContainedScore is returned when the query contains the candidate.
	ContainedScore = 0.8

	// editWeight down-weights the edit-distance signal against word overlap.
	editWeight = 0.7
)

// Similarity scores how well candidate matches query, in [0,1].
func Similarity(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))

	switch {
	case q == c:
		return ExactScore
	case strings.Contains(c, q):
		return ContainsScore
	case strings.Contains(q, c):
		return ContainedScore
	}

	score := max(wordOverlap(q, c), editWeight*editScore(q, c))
	return min(max(score, 0), 1)
}

// wordOverlap counts query words that contain, or are contained in, some
// candidate word. Each query word counts at most once.
func wordOverlap(q, c string) float64 {
	queryWords := strings.Fields(q)
	candidateWords := strings.Fields(c)

	matched := 0
	for _, qw := range queryWords {
		for _, cw := range candidateWords {
			if strings.Contains(cw, qw) || strings.Contains(qw, cw) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(max(len(queryWords), len(candidateWords), 1))
}

func editScore(q, c string) float64 {
	longest := max(utf8.RuneCountInString(q), utf8.RuneCountInString(c), 1)
	return 1 - float64(Levenshtein(q, c))/float64(longest)
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
