package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/apiclient"
	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/flyer"
	"redesperanza/web/internal/guard"
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/view"
)

const clueRequiredMessage = "Por favor escribe tu información"

func caseURL(id string) string {
	return "/caso/" + url.PathEscape(id)
}

func (h HandlerSet) CaseDetail(c *gin.Context) {
	h.renderCase(c, http.StatusOK, "", "")
}

func (h HandlerSet) renderCase(c *gin.Context, status int, clueMessage, clueError string) {
	ctx := c.Request.Context()
	ac := auth.FromGin(c)
	id := c.Param("id")

	item, err := h.api.GetCase(ctx, ac, id)
	if err != nil {
		if apiclient.IsNotFound(err) {
			h.views.HTML(c, http.StatusNotFound, view.PageNotFound, h.base(c, "Caso no encontrado"))
			return
		}
		h.fail(c, err)
		return
	}

	clues, err := h.api.ListCluesByCase(ctx, ac, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	page := view.CasePage{
		Base:        h.base(c, item.MissingName),
		Case:        item,
		Clues:       clues,
		CanAddClue:  !ac.IsAdmin() && item.Status == models.CaseStatusActive,
		CanApprove:  ac.IsAdmin() && item.Status.CanTransition(models.CaseStatusActive),
		CanResolve:  ac.IsAdmin() && item.Status.CanTransition(models.CaseStatusResolved),
		ClueMessage: clueMessage,
	}
	if clueError != "" {
		page.Error = clueError
	}
	h.views.HTML(c, status, view.PageCase, page)
}

func (h HandlerSet) CreateClue(c *gin.Context) {
	ctx := c.Request.Context()
	ac := auth.FromGin(c)
	id := c.Param("id")
	message := strings.TrimSpace(c.PostForm("mensaje"))

	if message == "" {
		h.renderCase(c, http.StatusUnprocessableEntity, "", clueRequiredMessage)
		return
	}

	item, err := h.api.GetCase(ctx, ac, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ac.IsAdmin() || item.Status != models.CaseStatusActive {
		redirect(c, caseURL(id))
		return
	}

	if _, err := h.api.CreateClue(ctx, ac, models.ClueInput{CaseID: id, Message: message}); err != nil {
		_ = c.Error(err)
		h.renderCase(c, http.StatusOK, message, "Error al enviar la información")
		return
	}
	redirect(c, caseURL(id)+"?aviso=pista-enviada")
}

func (h HandlerSet) UpdateCaseStatus(c *gin.Context) {
	ctx := c.Request.Context()
	ac := auth.FromGin(c)
	id := c.Param("id")
	next := models.CaseStatus(c.PostForm("estado"))

	item, err := h.api.GetCase(ctx, ac, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !item.Status.CanTransition(next) {
		message := fmt.Sprintf("No se puede cambiar el estado de %s a %s", item.Status.Label(), next.Label())
		if guard.WantsJSON(c) {
			c.JSON(http.StatusConflict, gin.H{"error": message})
			return
		}
		h.views.HTML(c, http.StatusConflict, view.PageError, view.ErrorPage{
			Base:    h.base(c, "Error"),
			Message: message,
		})
		return
	}

	if _, err := h.api.UpdateCaseStatus(ctx, ac, id, next); err != nil {
		_ = c.Error(err)
		redirect(c, caseURL(id)+"?error=estado")
		return
	}
	h.log.Info().Str("case_id", id).Str("from", string(item.Status)).Str("to", string(next)).Msg("case status changed")
	redirect(c, caseURL(id)+"?aviso=estado-actualizado")
}

func (h HandlerSet) DeleteCase(c *gin.Context) {
	id := c.Param("id")
	if err := h.api.DeleteCase(c.Request.Context(), auth.FromGin(c), id); err != nil {
		_ = c.Error(err)
		redirect(c, caseURL(id)+"?error=eliminar")
		return
	}
	h.log.Info().Str("case_id", id).Msg("case deleted")
	redirect(c, guard.HomePath+"?aviso=caso-eliminado")
}

func (h HandlerSet) CaseFlyer(c *gin.Context) {
	item, err := h.api.GetCase(c.Request.Context(), auth.FromGin(c), c.Param("id"))
	if err != nil {
		if apiclient.IsNotFound(err) {
			h.views.HTML(c, http.StatusNotFound, view.PageNotFound, h.base(c, "Caso no encontrado"))
			return
		}
		h.fail(c, err)
		return
	}

	pdf, err := flyer.Render(item)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", item.ID).Msg("render flyer failed")
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"se-busca-%s.pdf\"", url.PathEscape(item.ID)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
