package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) SearchAddress(c *gin.Context) {
	suggestions, err := h.geocoder.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		h.log.Warn().Err(err).Msg("address search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error al buscar direcciones"})
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h HandlerSet) ReverseAddress(c *gin.Context) {
	lat, okLat := coordinate(c.Query("lat"), 90)
	lon, okLon := coordinate(c.Query("lon"), 180)
	if !okLat || !okLon {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordenadas inválidas"})
		return
	}
	c.JSON(http.StatusOK, h.geocoder.Reverse(c.Request.Context(), lat, lon))
}

// coordinate parses raw and checks it lies within [-limit, limit]. NaN fails the check.
func coordinate(raw string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}
