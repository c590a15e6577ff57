package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/store"
)

// Store keeps the saved sessions as one ordered collection, newest first.
//
// Every mutation reads the whole collection, changes it in memory and writes
// it back. There is no locking: two concurrent mutations can lose one of the
// writes (last write wins).
type Store struct {
	kv  store.KV
	now func() time.Time
}

// NewStore creates a session store over kv.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// List returns every saved session. It returns an empty slice when nothing
// has been stored yet.
func (s *Store) List(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if _, err := s.kv.GetJSON(ctx, store.KeySessions, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// Get returns the session with id, or nil if there is none.
func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// Save prepends session to the collection. The caller supplies a unique ID.
func (s *Store) Save(ctx context.Context, session models.Session) error {
	sessions, err := s.List(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, append([]models.Session{session}, sessions...))
}

// Delete removes the session with id. A missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	sessions, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	return s.write(ctx, kept)
}

// Update merges patch into the session with id and bumps its UpdatedAt.
// A missing id is not an error.
func (s *Store) Update(ctx context.Context, id string, patch models.SessionPatch) error {
	sessions, err := s.List(ctx)
	if err != nil {
		return err
	}

	for i := range sessions {
		if sessions[i].ID != id {
			continue
		}
		if patch.Name != nil {
			sessions[i].Name = *patch.Name
		}
		if patch.Tabs != nil {
			sessions[i].Tabs = patch.Tabs
		}
		sessions[i].UpdatedAt = s.now().UnixMilli()
	}
	return s.write(ctx, sessions)
}

// Import adds every incoming session whose ID is not already stored. New
// sessions go in front of the existing ones, in their incoming order.
// It returns how many were added.
func (s *Store) Import(ctx context.Context, incoming []models.Session) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, sess := range existing {
		seen[sess.ID] = true
	}

	var added []models.Session
	for _, sess := range incoming {
		if sess.ID == "" || seen[sess.ID] {
			continue
		}
		seen[sess.ID] = true
		if sess.Tabs == nil {
			sess.Tabs = []models.Tab{}
		}
		added = append(added, sess)
	}

	if len(added) == 0 {
		return 0, nil
	}
	if err := s.write(ctx, append(added, existing...)); err != nil {
		return 0, err
	}
	return len(added), nil
}

func (s *Store) write(ctx context.Context, sessions []models.Session) error {
	if err := s.kv.PutJSON(ctx, store.KeySessions, sessions); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}
