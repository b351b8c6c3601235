package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/view"
)

func (h HandlerSet) ServiceWorker(c *gin.Context) {
	h.serveAsset(c, "service-worker.js", "application/javascript; charset=utf-8")
}

func (h HandlerSet) Manifest(c *gin.Context) {
	h.serveAsset(c, "manifest.json", "application/manifest+json")
}

func (h HandlerSet) serveAsset(c *gin.Context, name, contentType string) {
	body, err := view.Asset(name)
	if err != nil {
		h.log.Error().Err(err).Str("asset", name).Msg("read asset failed")
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType, body)
}
