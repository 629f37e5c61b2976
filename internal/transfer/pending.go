package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rewecart/internal/matching"
	"rewecart/internal/store"
)

// pendingKey holds the candidates last shown for the current task.
const pendingKey = "pendingCandidates"

// Pending is a Resolution remembered between two commands, so that a pick
// refers to the list the user was shown.
type Pending struct {
	SessionID  string               `json:"sessionId"`
	Index      int                  `json:"index"`
	Term       string               `json:"term"`
	SearchURL  string               `json:"searchUrl"`
	Source     Source               `json:"source"`
	Candidates []matching.Candidate `json:"candidates"`

	// Auto is the position of the automatic choice in Candidates, or -1.
	Auto int `json:"auto"`
}

// NewPending records res as the candidates for the task at cur in s.
func NewPending(s *Session, cur CurrentTask, res Resolution) Pending {
	p := Pending{
		SessionID:  s.ID,
		Index:      cur.Index,
		Term:       res.Term,
		SearchURL:  res.SearchURL,
		Source:     res.Source,
		Candidates: res.Candidates,
		Auto:       -1,
	}
	for i := range res.Candidates {
		if res.Auto != nil && &res.Candidates[i] == res.Auto {
			p.Auto = i
		}
	}
	return p
}

// Matches reports whether p was resolved for cur with its current term.
// Fallback placeholders never match, so the next lookup searches again.
func (p Pending) Matches(s *Session, cur CurrentTask) bool {
	if p.Source == SourceFallback {
		return false
	}
	return s != nil && p.SessionID == s.ID && p.Index == cur.Index && p.Term == cur.SearchTerm
}

// Resolution restores the remembered Resolution.
func (p Pending) Resolution() Resolution {
	res := Resolution{
		Term:       p.Term,
		SearchURL:  p.SearchURL,
		Source:     p.Source,
		Candidates: p.Candidates,
	}
	if p.Auto >= 0 && p.Auto < len(res.Candidates) {
		res.Auto = &res.Candidates[p.Auto]
	}
	return res
}

// SavePending stores p, replacing earlier candidates.
func (r *Repository) SavePending(ctx context.Context, p Pending) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	return r.store.Put(ctx, store.Session, pendingKey, data)
}

// LoadPending returns the stored candidates. The boolean is false when
// there are none.
func (r *Repository) LoadPending(ctx context.Context) (Pending, bool, error) {
	data, err := r.store.Get(ctx, store.Session, pendingKey)
	if errors.Is(err, store.ErrNotFound) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, err
	}

	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return Pending{}, false, fmt.Errorf("decode candidates: %w", err)
	}
	return p, true, nil
}
