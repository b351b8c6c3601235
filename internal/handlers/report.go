package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/middleware"
	"redesperanza/web/internal/view"
	"redesperanza/web/internal/wizard"
)

const submitFailedMessage = "Error al enviar el reporte. Por favor intenta nuevamente."

func (h HandlerSet) loadDraft(c *gin.Context) wizard.Draft {
	draft, err := h.drafts.Load(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.log.Warn().Err(err).Msg("load report draft failed")
	}
	return draft
}

func (h HandlerSet) saveDraft(c *gin.Context, draft wizard.Draft) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	if err := h.drafts.Save(ctx, sid, draft); err != nil {
		h.log.Warn().Err(err).Msg("save report draft failed")
	}
	if photos := draft.Photos(); h.pending != nil && len(photos) > 0 {
		if err := h.pending.Touch(ctx, sid, photos...); err != nil {
			h.log.Warn().Err(err).Msg("refresh draft photos failed")
		}
	}
}

func (h HandlerSet) renderReport(c *gin.Context, status int, draft wizard.Draft, message string) {
	page := view.ReportPage{Base: h.base(c, "Reportar desaparición"), Draft: draft}
	if message != "" {
		page.Error = message
	}
	h.views.HTML(c, status, view.PageReport, page)
}

func (h HandlerSet) ReportForm(c *gin.Context) {
	h.renderReport(c, http.StatusOK, h.loadDraft(c), "")
}

// ReportStep applies the submitted step and then moves back, forward or submits.
func (h HandlerSet) ReportStep(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.renderReport(c, http.StatusBadRequest, h.loadDraft(c), wizard.ErrIncomplete.Error())
		return
	}

	draft := h.loadDraft(c)
	draft.Apply(c.Request.PostForm)

	switch c.PostForm("accion") {
	case "anterior":
		draft.Prev()
		h.saveDraft(c, draft)
		h.renderReport(c, http.StatusOK, draft, "")
	case "enviar":
		h.submitReport(c, draft)
	default:
		err := draft.Next()
		h.saveDraft(c, draft)
		if err != nil {
			h.renderReport(c, http.StatusUnprocessableEntity, draft, err.Error())
			return
		}
		h.renderReport(c, http.StatusOK, draft, "")
	}
}

func (h HandlerSet) submitReport(c *gin.Context, draft wizard.Draft) {
	ctx := c.Request.Context()
	ac := auth.FromGin(c)
	h.saveDraft(c, draft)

	user := ac.CurrentUser()
	if user == nil {
		redirect(c, "/login")
		return
	}

	input, err := draft.Build(user.ID)
	if err != nil {
		message := submitFailedMessage
		if errors.Is(err, wizard.ErrIncomplete) {
			message = err.Error()
		}
		h.renderReport(c, http.StatusUnprocessableEntity, draft, message)
		return
	}

	created, err := h.api.CreateCase(ctx, ac, input)
	if err != nil {
		_ = c.Error(err)
		h.renderReport(c, http.StatusOK, draft, submitFailedMessage)
		return
	}
	h.log.Info().Str("case_id", created.ID).Str("user_id", user.ID).Msg("case reported")

	if h.pending != nil {
		if err := h.pending.Release(ctx, middleware.SessionID(c), draft.Photos()...); err != nil {
			h.log.Warn().Err(err).Msg("release uploaded photos failed")
		}
	}
	if err := h.drafts.Delete(ctx, middleware.SessionID(c)); err != nil {
		h.log.Warn().Err(err).Msg("drop report draft failed")
	}

	redirect(c, "/perfil?aviso=reporte-enviado")
}
