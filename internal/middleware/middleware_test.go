package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/auth"
	applog "redesperanza/web/internal/log"
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/session"
)

const cookieName = "re_session"

func newSessions(t *testing.T) (*Sessions, *session.Manager) {
	t.Helper()
	manager, err := session.NewManager(session.NewMemoryStore(), session.Options{
		Secret: "0123456789abcdef0123456789abcdef",
		TTL:    time.Hour,
		Log:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return NewSessions(manager, SessionCookie{Name: cookieName, MaxAge: time.Hour}, zerolog.Nop()), manager
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			found = c
		}
	}
	return found
}

func TestSessionMiddlewareIssuesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, _ := newSessions(t)

	r := gin.New()
	r.Use(sessions.Middleware())
	r.GET("/", func(c *gin.Context) {
		ac := auth.FromGin(c)
		assert.False(t, ac.Loading())
		assert.False(t, ac.IsAuthenticated())
		assert.NotEmpty(t, SessionID(c))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}

func TestSessionMiddlewareRestoresSavedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, manager := newSessions(t)

	sid := session.NewSessionID()
	require.NoError(t, manager.Handle(sid).Save(context.Background(), "tok", models.User{ID: "u-1", IsAdmin: true}))
	value, err := manager.EncodeCookie(sid)
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Middleware())
	r.GET("/", func(c *gin.Context) {
		ac := auth.FromGin(c)
		assert.True(t, ac.IsAdmin())
		assert.Equal(t, "tok", ac.Token(c.Request.Context()))
		assert.Equal(t, sid, SessionID(c))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, sessionCookie(t, w))
}

func TestSessionMiddlewareReplacesTamperedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, _ := newSessions(t)

	r := gin.New()
	r.Use(sessions.Middleware())
	r.GET("/", func(c *gin.Context) {
		assert.False(t, auth.FromGin(c).IsAuthenticated())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-jwt"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotNil(t, sessionCookie(t, w))
}

func TestAdoptMovesBrowserToNewSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, manager := newSessions(t)

	oldID := session.NewSessionID()
	require.NoError(t, manager.Handle(oldID).Save(context.Background(), "old", models.User{ID: "u-1"}))
	value, err := manager.EncodeCookie(oldID)
	require.NoError(t, err)

	var newID string
	r := gin.New()
	r.Use(sessions.Middleware())
	r.POST("/login", func(c *gin.Context) {
		handle := sessions.NewHandle()
		newID = handle.ID()
		assert.NotEqual(t, oldID, newID)
		assert.Equal(t, oldID, SessionID(c))

		require.NoError(t, handle.Save(c.Request.Context(), "new", models.User{ID: "u-2"}))
		ac, err := sessions.Adopt(c, handle)
		require.NoError(t, err)

		assert.Equal(t, newID, SessionID(c))
		assert.Same(t, ac, auth.FromGin(c))
		require.NotNil(t, ac.CurrentUser())
		assert.Equal(t, "u-2", ac.CurrentUser().ID)
		assert.Equal(t, "new", ac.Token(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, manager.Handle(oldID).Load(context.Background()))

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	decoded, err := manager.DecodeCookie(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, newID, decoded)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), applog.RequestID(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	tests := []struct {
		incoming string
		kept     bool
	}{
		{incoming: "3f1c1a52-8a4e-4c69-9d1b-0b4b2d5b1e11", kept: true},
		{incoming: "2HbR3fZ9c8xKq1.edge-7", kept: true},
		{incoming: "<script>"},
		{incoming: "short"},
		{incoming: strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, tt.incoming)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if tt.kept {
			assert.Equal(t, tt.incoming, w.Header().Get(requestIDHeader))
		} else {
			assert.NotEqual(t, tt.incoming, w.Header().Get(requestIDHeader))
			assert.Len(t, w.Header().Get(requestIDHeader), 36)
		}
	}
}

func TestRecoveryAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Ocurrió un error inesperado")

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Accept", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"route":"/boom"`)
}

func TestLoggerQuietPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(log, "/healthz"))
	r.GET("/healthz", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("checked")
		c.Status(http.StatusOK)
	})
	r.GET("/caso/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotContains(t, buf.String(), "http request")
	assert.Contains(t, buf.String(), `"message":"checked"`)
	assert.Contains(t, buf.String(), `"request_id"`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/caso/c-1", nil))
	assert.Contains(t, buf.String(), `"route":"/caso/:id"`)
	assert.Contains(t, buf.String(), `"path":"/caso/c-1"`)
}
