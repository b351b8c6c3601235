package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/apiclient"
	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/guard"
	"redesperanza/web/internal/middleware"
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/session"
	"redesperanza/web/internal/view"
)

func (h HandlerSet) LoginPage(c *gin.Context) {
	if auth.FromGin(c).IsAuthenticated() {
		redirect(c, guard.HomePath)
		return
	}

	mode := view.LoginModeLogin
	if c.Query("modo") == "registro" {
		mode = view.LoginModeRegister
	}
	h.views.HTML(c, http.StatusOK, view.PageLogin, view.LoginPage{
		Base: h.base(c, "Iniciar sesión"),
		Mode: mode,
	})
}

func (h HandlerSet) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("correo"))
	password := c.PostForm("password")

	handle := h.sessions.NewHandle()
	user, err := h.api.Login(c.Request.Context(), handle, email, password)
	if err != nil {
		h.renderAuthError(c, view.LoginPage{Mode: view.LoginModeLogin, Email: email}, err)
		return
	}

	h.signIn(c, handle, user)
}

func (h HandlerSet) Register(c *gin.Context) {
	input := models.RegisterInput{
		Name:     strings.TrimSpace(c.PostForm("nombre")),
		Email:    strings.TrimSpace(c.PostForm("correo")),
		Password: c.PostForm("password"),
		Phone:    strings.TrimSpace(c.PostForm("telefono")),
	}

	handle := h.sessions.NewHandle()
	result, err := h.api.Register(c.Request.Context(), handle, input)
	if err != nil {
		h.renderAuthError(c, view.LoginPage{
			Mode:  view.LoginModeRegister,
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
		}, err)
		return
	}

	h.signIn(c, handle, result.User)
}

func (h HandlerSet) signIn(c *gin.Context, handle *session.Handle, user models.User) {
	ac, err := h.sessions.Adopt(c, handle)
	if err != nil {
		h.log.Error().Err(err).Msg("adopt session failed")
		ac = auth.FromGin(c)
	}
	ac.Login(user)
	redirect(c, guard.HomePath)
}

func (h HandlerSet) renderAuthError(c *gin.Context, page view.LoginPage, err error) {
	page.Base = h.base(c, "Iniciar sesión")
	page.Error = apiclient.Message(err)
	h.views.HTML(c, http.StatusUnprocessableEntity, view.PageLogin, page)
}

func (h HandlerSet) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	auth.FromGin(c).Logout(ctx)
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.drafts.Delete(ctx, sid); err != nil {
			h.log.Warn().Err(err).Msg("drop report draft failed")
		}
	}
	redirect(c, guard.LoginPath)
}
