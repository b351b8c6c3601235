package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/session"
)

const sessionHandleKey = "session_handle"

type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Sessions binds each request to a browser session and its auth.Context.
type Sessions struct {
	manager *session.Manager
	cookie  SessionCookie
	log     zerolog.Logger
}

func NewSessions(manager *session.Manager, cookie SessionCookie, log zerolog.Logger) *Sessions {
	return &Sessions{manager: manager, cookie: cookie, log: log}
}

// Middleware reads the session cookie, issuing a new one when it is missing
// or invalid, and attaches a restored auth.Context to the request.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(s.cookie.Name)
		sessionID, err := s.manager.DecodeCookie(raw)
		if err != nil {
			sessionID = session.NewSessionID()
			if err := s.setCookie(c, sessionID); err != nil {
				s.log.Error().Err(err).Msg("issue session cookie failed")
			}
		}

		s.bind(c, s.manager.Handle(sessionID)).Restore(c.Request.Context())
		c.Next()
	}
}

// NewHandle returns a handle for a session id that is not yet bound to the
// browser. Credentials are saved there first and the handle is adopted only
// once login succeeds.
func (s *Sessions) NewHandle() *session.Handle {
	return s.manager.Handle(session.NewSessionID())
}

// Adopt moves the browser to handle, drops the previous session record and
// returns the restored auth.Context for the new session.
func (s *Sessions) Adopt(c *gin.Context, handle *session.Handle) (*auth.Context, error) {
	if err := s.setCookie(c, handle.ID()); err != nil {
		return nil, err
	}
	if old := SessionHandle(c); old != nil && old.ID() != handle.ID() {
		old.Clear(c.Request.Context())
	}

	ac := s.bind(c, handle)
	ac.Restore(c.Request.Context())
	return ac, nil
}

func (s *Sessions) bind(c *gin.Context, handle *session.Handle) *auth.Context {
	ac := auth.New(handle, s.log.With().Str("session_id", handle.ID()).Logger())
	c.Set(sessionHandleKey, handle)
	auth.Attach(c, ac)
	return ac
}

func (s *Sessions) setCookie(c *gin.Context, sessionID string) error {
	value, err := s.manager.EncodeCookie(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func SessionHandle(c *gin.Context) *session.Handle {
	if v, ok := c.Get(sessionHandleKey); ok {
		if h, ok := v.(*session.Handle); ok {
			return h
		}
	}
	return nil
}

func SessionID(c *gin.Context) string {
	if h := SessionHandle(c); h != nil {
		return h.ID()
	}
	return ""
}
