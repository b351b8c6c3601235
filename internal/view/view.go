// Package view renders the server-side HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/models"
	"redesperanza/web/internal/wizard"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

const (
	PageLoading  = "loading"
	PageLogin    = "login"
	PageHome     = "home"
	PageCase     = "case"
	PageReport   = "report"
	PageProfile  = "profile"
	PageAdmin    = "admin"
	PageNotFound = "notfound"
	PageError    = "error"

	LoadingMessage = "Cargando Red Esperanza..."
)

var pageNames = []string{
	PageLoading, PageLogin, PageHome, PageCase, PageReport,
	PageProfile, PageAdmin, PageNotFound, PageError,
}

// Base is embedded in every page's view data.
type Base struct {
	Title   string
	User    *models.User
	IsAdmin bool
	Notice  string
	Error   string
}

type Renderer struct {
	pages map[string]*template.Template
	log   zerolog.Logger
}

func New(log zerolog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.tmpl").Funcs(funcs).
			ParseFS(assets, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, log: log}, nil
}

func (r *Renderer) HTML(c *gin.Context, status int, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", page)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := tmpl.ExecuteTemplate(c.Writer, "layout", data); err != nil {
		r.log.Error().Err(err).Str("page", page).Msg("render template failed")
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "render failure")
		}
	}
}

// Loading renders the placeholder shown while the session is being read.
func (r *Renderer) Loading(c *gin.Context) {
	r.HTML(c, http.StatusOK, PageLoading, Base{Title: LoadingMessage})
}

func StaticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	return http.FS(sub), nil
}

func Asset(name string) ([]byte, error) {
	return assets.ReadFile("static/" + name)
}

var bogota = time.FixedZone("COT", -5*60*60)

var funcs = template.FuncMap{
	"caseLabel": func(s models.CaseStatus) string { return s.Label() },
	"clueLabel": func(s models.ClueStatus) string { return s.Label() },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(bogota).Format("02/01/2006 15:04")
	},
	"sex": func(s string) string {
		switch s {
		case "MASCULINO":
			return "Masculino"
		case "FEMENINO":
			return "Femenino"
		}
		return "Otro"
	},
	"stepLabel": func(step int) string {
		if step < wizard.FirstStep || step > wizard.LastStep {
			return ""
		}
		return wizard.StepLabels[step-1]
	},
	"steps": func() []int {
		out := make([]int, 0, wizard.LastStep)
		for i := wizard.FirstStep; i <= wizard.LastStep; i++ {
			out = append(out, i)
		}
		return out
	},
}
