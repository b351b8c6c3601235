package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/auth"
	"redesperanza/web/internal/view"
)

type caseMarker struct {
	ID      string  `json:"id"`
	Name    string  `json:"nombre"`
	Age     int     `json:"edad"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"direccion"`
}

func (h HandlerSet) Home(c *gin.Context) {
	page := view.HomePage{
		Base:    h.base(c, "Casos activos"),
		MapView: c.Query("vista") == "mapa",
	}

	cases, err := h.api.ListActiveCases(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		_ = c.Error(err)
		h.log.Warn().Err(err).Msg("load active cases failed")
		page.Error = "Error al cargar casos"
	}
	page.Cases = cases

	h.views.HTML(c, http.StatusOK, view.PageHome, page)
}

func (h HandlerSet) CaseMarkers(c *gin.Context) {
	cases, err := h.api.ListActiveCases(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	markers := make([]caseMarker, 0, len(cases))
	for _, cs := range cases {
		markers = append(markers, caseMarker{
			ID:      cs.ID,
			Name:    cs.MissingName,
			Age:     cs.MissingAge,
			Lat:     cs.Latitude,
			Lon:     cs.Longitude,
			Address: cs.Address,
		})
	}
	c.JSON(http.StatusOK, markers)
}
