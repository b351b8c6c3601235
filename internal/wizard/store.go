package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"redesperanza/web/internal/session"
)

const draftPrefix = "draft:"

// DraftStore keeps one in-progress report per browser session.
type DraftStore struct {
	store session.Store
	ttl   time.Duration
}

func NewDraftStore(store session.Store, ttl time.Duration) *DraftStore {
	return &DraftStore{store: store, ttl: ttl}
}

// Load returns the saved draft, or a fresh one when none exists.
func (s *DraftStore) Load(ctx context.Context, sessionID string) (Draft, error) {
	raw, err := s.store.Get(ctx, draftPrefix+sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return NewDraft(), nil
	}
	if err != nil {
		return NewDraft(), fmt.Errorf("load draft: %w", err)
	}

	draft := NewDraft()
	if err := json.Unmarshal(raw, &draft); err != nil {
		return NewDraft(), nil
	}
	if draft.Step < FirstStep || draft.Step > LastStep {
		draft.Step = FirstStep
	}
	return draft, nil
}

func (s *DraftStore) Save(ctx context.Context, sessionID string, draft Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.Put(ctx, draftPrefix+sessionID, payload, s.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, draftPrefix+sessionID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
