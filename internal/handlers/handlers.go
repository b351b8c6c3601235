package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/apiclient"
	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/config"
	"redesperanza/web/internal/geocode"
	"redesperanza/web/internal/guard"
	"redesperanza/web/internal/middleware"
	"redesperanza/web/internal/upload"
	"redesperanza/web/internal/view"
	"redesperanza/web/internal/wizard"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PendingUploads tracks the photos a session uploaded but has not submitted yet.
// Touch keeps the photos of a live draft, Release forgets them once a case
// references them.
type PendingUploads interface {
	Touch(ctx context.Context, owner string, urls ...string) error
	Release(ctx context.Context, owner string, urls ...string) error
}

type Deps struct {
	Log      zerolog.Logger
	Config   *config.AppConfig
	API      *apiclient.Client
	Sessions *middleware.Sessions
	Views    *view.Renderer
	Drafts   *wizard.DraftStore
	Uploads  *upload.Service
	Pending  PendingUploads
	Geocoder *geocode.Client
	Checks   map[string]Pinger
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	api      *apiclient.Client
	sessions *middleware.Sessions
	views    *view.Renderer
	drafts   *wizard.DraftStore
	uploads  *upload.Service
	pending  PendingUploads
	geocoder *geocode.Client
	checks   map[string]Pinger
	static   http.FileSystem
}

func NewHandlerSet(d Deps) (HandlerSet, error) {
	static, err := view.StaticFS()
	if err != nil {
		return HandlerSet{}, fmt.Errorf("static assets: %w", err)
	}

	return HandlerSet{
		log:      d.Log,
		cfg:      d.Config,
		api:      d.API,
		sessions: d.Sessions,
		views:    d.Views,
		drafts:   d.Drafts,
		uploads:  d.Uploads,
		pending:  d.Pending,
		geocoder: d.Geocoder,
		checks:   d.Checks,
		static:   static,
	}, nil
}

// Mount attaches every route of the app to engine.
func (h HandlerSet) Mount(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
	engine.StaticFS("/static", h.static)
	engine.GET("/service-worker.js", h.ServiceWorker)
	engine.GET("/manifest.json", h.Manifest)

	pages := engine.Group("/", h.sessions.Middleware())
	pages.GET("/login", h.LoginPage)
	pages.POST("/login", h.Login)
	pages.POST("/register", h.Register)
	pages.POST("/logout", h.Logout)

	authed := pages.Group("/", guard.RequireAuth(h.views.Loading))
	authed.GET("/", h.Home)
	authed.GET("/casos/mapa.json", h.CaseMarkers)
	authed.GET("/caso/:id", h.CaseDetail)
	authed.POST("/caso/:id/pistas", h.CreateClue)
	authed.GET("/caso/:id/cartel.pdf", h.CaseFlyer)
	authed.GET("/reportar", h.ReportForm)
	authed.POST("/reportar", h.ReportStep)
	authed.GET("/perfil", h.Profile)
	authed.POST("/subidas", h.Upload)
	authed.GET("/direcciones/buscar", h.SearchAddress)
	authed.GET("/direcciones/inversa", h.ReverseAddress)

	admin := pages.Group("/", guard.RequireAdmin(h.views.Loading))
	admin.POST("/caso/:id/estado", h.UpdateCaseStatus)
	admin.POST("/caso/:id/eliminar", h.DeleteCase)
	admin.GET("/admin", h.AdminDashboard)
	admin.POST("/admin/pistas/:id/estado", h.UpdateClueStatus)

	engine.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, guard.LoginPath)
	})
}

// Notices shown after a redirect, keyed by the ?aviso= value.
var notices = map[string]string{
	"reporte-enviado":    "✓ Reporte enviado con éxito. Tu reporte ha sido recibido por nuestro equipo para verificación.",
	"pista-enviada":      "¡Gracias! Tu información ha sido enviada al equipo de Red Esperanza.",
	"estado-actualizado": "Estado actualizado correctamente",
	"caso-eliminado":     "Caso eliminado correctamente",
	"pista-actualizada":  "Estado de la pista actualizado",
}

// Failures shown after a redirect, keyed by the ?error= value.
var failures = map[string]string{
	"estado":   "Error al actualizar el estado",
	"eliminar": "Error al eliminar el caso",
	"pista":    "Error al actualizar la pista",
}

func (h HandlerSet) base(c *gin.Context, title string) view.Base {
	ac := auth.FromGin(c)
	return view.Base{
		Title:   title,
		User:    ac.CurrentUser(),
		IsAdmin: ac.IsAdmin(),
		Notice:  notices[c.Query("aviso")],
		Error:   failures[c.Query("error")],
	}
}

// fail renders a backend error to the user.
func (h HandlerSet) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, context.Canceled) {
		c.Abort()
		return
	}

	status := http.StatusBadGateway
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}

	if guard.WantsJSON(c) {
		c.JSON(status, gin.H{"error": apiclient.Message(err)})
		return
	}
	h.views.HTML(c, status, view.PageError, view.ErrorPage{
		Base:    h.base(c, "Error"),
		Message: apiclient.Message(err),
	})
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
