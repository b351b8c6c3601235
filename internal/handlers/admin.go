package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/guard"
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/view"
)

func (h HandlerSet) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	ac := auth.FromGin(c)

	dashboard, err := h.api.LoadDashboard(ctx, ac)
	if err != nil {
		h.fail(c, err)
		return
	}

	page := view.AdminPage{
		Base:         h.base(c, "Administración"),
		Tab:          view.AdminTab(c.Query("tab")),
		Cases:        dashboard.Cases,
		Clues:        dashboard.Clues,
		Stats:        dashboard.Stats,
		PendingCases: models.FilterCases(dashboard.Cases, models.CaseStatusPending),
	}

	// The user count is only shown on the overview and never blocks the dashboard.
	if page.Tab == view.AdminTabOverview {
		users, err := h.api.ListUsers(ctx, ac)
		if err != nil {
			h.log.Warn().Err(err).Msg("list users failed")
		} else {
			page.Users = len(users)
			page.UsersLoaded = true
		}
	}

	h.views.HTML(c, http.StatusOK, view.PageAdmin, page)
}

// UpdateClueStatus verifies or discards a clue that is still pending review.
func (h HandlerSet) UpdateClueStatus(c *gin.Context) {
	next := models.ClueStatus(c.PostForm("estado"))
	back := "/admin?tab=" + url.QueryEscape(view.AdminTabClues)

	if !models.ClueStatusPending.CanTransition(next) {
		if guard.WantsJSON(c) {
			c.JSON(http.StatusConflict, gin.H{"error": "Estado de pista inválido"})
			return
		}
		redirect(c, back+"&error=pista")
		return
	}

	id := c.Param("id")
	if _, err := h.api.UpdateClueStatus(c.Request.Context(), auth.FromGin(c), id, next); err != nil {
		_ = c.Error(err)
		redirect(c, back+"&error=pista")
		return
	}
	h.log.Info().Str("clue_id", id).Str("to", string(next)).Msg("clue status changed")
	redirect(c, back+"&aviso=pista-actualizada")
}
