package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/guard"
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/view"
)

func (h HandlerSet) Profile(c *gin.Context) {
	ac := auth.FromGin(c)
	user := ac.CurrentUser()
	if user == nil {
		redirect(c, guard.LoginPath)
		return
	}
	ctx := c.Request.Context()

	// The cached user dates from login; show what the backend holds now.
	if fresh, err := h.api.GetUser(ctx, ac, user.ID); err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("refresh user failed")
	} else {
		ac.UpdateUser(models.ProfilePatch(fresh))
	}

	page := view.ProfilePage{Base: h.base(c, "Mi perfil")}

	cases, err := h.api.ListCasesByUser(ctx, ac, user.ID)
	if err != nil {
		_ = c.Error(err)
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("load user cases failed")
		page.Error = "Error al cargar tus reportes"
	}

	page.Cases = cases
	page.Total = len(cases)
	page.Active = models.CountCases(cases, models.CaseStatusActive)
	page.Resolved = models.CountCases(cases, models.CaseStatusResolved)

	if stats, err := h.api.GetUserStats(ctx, ac, user.ID); err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("load user stats failed")
	} else {
		page.Clues = &stats.Clues
	}

	h.views.HTML(c, http.StatusOK, view.PageProfile, page)
}
