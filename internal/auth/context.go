// Package auth holds the per-request authentication state: who the current
// user is, whether they are an administrator, and whether the stored session
// has been read yet.
package auth

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/models"
)

const contextKey = "auth_context"

// SessionHandle is the slice of session.Handle the context needs.
type SessionHandle interface {
	Load(ctx context.Context) *models.User
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

type Context struct {
	handle SessionHandle
	log    zerolog.Logger

	restoreOnce sync.Once

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

// New returns a context in the loading state. Call Restore before reading it.
func New(handle SessionHandle, log zerolog.Logger) *Context {
	return &Context{
		handle:  handle,
		log:     log,
		loading: true,
	}
}

// Restore reads the stored session once. Later calls do nothing.
func (a *Context) Restore(ctx context.Context) {
	a.restoreOnce.Do(func() {
		var user *models.User
		if a.handle != nil {
			user = a.handle.Load(ctx)
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if a.loading {
			a.user = user
		}
		a.loading = false
	})
}

// Login sets the in-memory user. Persisting the session is the API client's job.
func (a *Context) Login(user models.User) {
	a.mu.Lock()
	a.user = &user
	a.loading = false
	a.mu.Unlock()

	a.log.Debug().Str("user_id", user.ID).Msg("user logged in")
}

// Logout forgets the user, then removes the stored session.
func (a *Context) Logout(ctx context.Context) {
	a.mu.Lock()
	var userID string
	if a.user != nil {
		userID = a.user.ID
	}
	a.user = nil
	a.loading = false
	a.mu.Unlock()

	if a.handle != nil {
		a.handle.Clear(ctx)
	}
	a.log.Debug().Str("user_id", userID).Msg("user logged out")
}

// UpdateUser merges patch into the cached user. The stored session is left as is.
func (a *Context) UpdateUser(patch models.UserPatch) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return
	}
	merged := a.user.Merge(patch)
	a.user = &merged
}

// CurrentUser returns a copy of the user, or nil when nobody is logged in.
func (a *Context) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	user := *a.user
	return &user
}

func (a *Context) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

func (a *Context) IsAdmin() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil && a.user.IsAdmin
}

func (a *Context) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Token returns the stored bearer token so the context can feed the API client.
func (a *Context) Token(ctx context.Context) string {
	if a.handle == nil {
		return ""
	}
	return a.handle.Token(ctx)
}

func Attach(c *gin.Context, a *Context) {
	c.Set(contextKey, a)
}

// FromGin returns the request's context. Requests that skipped the session
// middleware get an anonymous, already restored one.
func FromGin(c *gin.Context) *Context {
	if v, ok := c.Get(contextKey); ok {
		if a, ok := v.(*Context); ok {
			return a
		}
	}
	a := New(nil, zerolog.Nop())
	a.Restore(c.Request.Context())
	return a
}
