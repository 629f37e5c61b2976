package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rewecart/internal/store"
)

// activeKey is the key of the active session in the session namespace.
const activeKey = "interactiveTransfer"

// Repository persists the active session. Saving replaces whatever session
// was stored before.
type Repository struct {
	store store.Store
}

// NewRepository creates a Repository over s.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Load returns the active session, or ErrNoActiveSession.
func (r *Repository) Load(ctx context.Context) (*Session, error) {
	data, err := r.store.Get(ctx, store.Session, activeKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Refined == nil {
		s.Refined = map[string]string{}
	}
	return &s, nil
}

// Save stores s as the active session.
func (r *Repository) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoActiveSession
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.store.Put(ctx, store.Session, activeKey, data)
}

// Clear discards the active session and its pending candidates.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, store.Session, pendingKey); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.Session, activeKey)
}
