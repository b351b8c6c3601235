// Package guard gates routes on the request's auth.Context.
package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/auth"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Kind int

const (
	KindAuthenticated Kind = iota
	KindAdmin
)

type Decision int

const (
	Allow Decision = iota
	Loading
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

type State struct {
	Loading       bool
	Authenticated bool
	Admin         bool
}

func StateOf(a *auth.Context) State {
	return State{
		Loading:       a.Loading(),
		Authenticated: a.IsAuthenticated(),
		Admin:         a.IsAdmin(),
	}
}

// Decide is evaluated in order: loading, anonymous, then the admin check.
func Decide(kind Kind, s State) Decision {
	switch {
	case s.Loading:
		return Loading
	case !s.Authenticated:
		return RedirectLogin
	case kind == KindAdmin && !s.Admin:
		return RedirectHome
	}
	return Allow
}

// Placeholder renders the page shown while the session is still loading.
type Placeholder func(c *gin.Context)

func RequireAuth(placeholder Placeholder) gin.HandlerFunc {
	return require(KindAuthenticated, placeholder)
}

func RequireAdmin(placeholder Placeholder) gin.HandlerFunc {
	return require(KindAdmin, placeholder)
}

func require(kind Kind, placeholder Placeholder) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Decide(kind, StateOf(auth.FromGin(c))) {
		case Allow:
			c.Next()
		case Loading:
			if placeholder != nil {
				placeholder(c)
			} else {
				c.Status(http.StatusOK)
			}
			c.Abort()
		case RedirectLogin:
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
		case RedirectHome:
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			c.Redirect(http.StatusSeeOther, HomePath)
			c.Abort()
		}
	}
}

// WantsJSON reports whether the client asked for JSON rather than HTML.
func WantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
