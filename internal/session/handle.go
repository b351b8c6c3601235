package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"redesperanza/web/internal/models"
)

const (
	recordVersion = 1
	sessionPrefix = "session:"
)

// Record is the persisted session. Token and user are always written together.
type Record struct {
	Version int          `json:"v"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	SavedAt time.Time    `json:"saved_at"`
}

type Options struct {
	Secret string
	TTL    time.Duration
	Log    zerolog.Logger
}

// Manager owns the store and the keys used to sign cookies and seal tokens.
type Manager struct {
	store     Store
	sealer    sealer
	cookieKey [keySize]byte
	ttl       time.Duration
	log       zerolog.Logger
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Secret == "" {
		return nil, errors.New("session: secret is required")
	}

	tokenKey, err := deriveKey([]byte(opts.Secret), tokenKeyInfo)
	if err != nil {
		return nil, err
	}
	cookieKey, err := deriveKey([]byte(opts.Secret), cookieKeyInfo)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:     store,
		sealer:    sealer{key: tokenKey},
		cookieKey: cookieKey,
		ttl:       opts.TTL,
		log:       opts.Log,
	}, nil
}

func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Handle binds the manager to one browser session.
func (m *Manager) Handle(sessionID string) *Handle {
	return &Handle{
		manager: m,
		id:      sessionID,
		key:     sessionPrefix + sessionID,
	}
}

// Handle implements save/load/clear/token for a single session id.
type Handle struct {
	manager *Manager
	id      string
	key     string
}

func (h *Handle) ID() string {
	return h.id
}

// Save writes token and user in a single put.
func (h *Handle) Save(ctx context.Context, token string, user models.User) error {
	sealed, err := h.manager.sealer.seal(token)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(Record{
		Version: recordVersion,
		Token:   sealed,
		User:    &user,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := h.manager.store.Put(ctx, h.key, payload, h.manager.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored user, or nil when the session is absent or unreadable.
func (h *Handle) Load(ctx context.Context) *models.User {
	record, ok := h.record(ctx)
	if !ok || record.User == nil {
		return nil
	}
	user := *record.User
	return &user
}

// Token returns the stored bearer token or an empty string.
func (h *Handle) Token(ctx context.Context) string {
	record, ok := h.record(ctx)
	if !ok {
		return ""
	}
	return record.Token
}

// Clear removes the session. Clearing an absent session is not an error.
func (h *Handle) Clear(ctx context.Context) {
	if err := h.manager.store.Delete(ctx, h.key); err != nil {
		h.manager.log.Warn().Err(err).Str("session_id", h.id).Msg("session clear failed")
	}
}

func (h *Handle) record(ctx context.Context) (Record, bool) {
	raw, err := h.manager.store.Get(ctx, h.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.manager.log.Warn().Err(err).Str("session_id", h.id).Msg("session store unavailable")
		}
		return Record{}, false
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil || record.Version != recordVersion {
		h.manager.log.Debug().Str("session_id", h.id).Msg("discarding malformed session record")
		return Record{}, false
	}

	token, err := h.manager.sealer.open(record.Token)
	if err != nil {
		h.manager.log.Debug().Str("session_id", h.id).Msg("discarding session with unreadable token")
		return Record{}, false
	}
	record.Token = token
	return record, true
}
