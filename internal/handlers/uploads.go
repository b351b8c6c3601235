package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"redesperanza/web/internal/media/sniffer"
	"redesperanza/web/internal/middleware"
	"redesperanza/web/internal/upload"
)

const uploadField = "archivo"

func (h HandlerSet) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Selecciona una imagen"})
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request.Context(), upload.Input{
		Owner:        middleware.SessionID(c),
		File:         file,
		Size:         header.Size,
		DeclaredType: sniffer.MimeTypeFromHTTP(http.Header(header.Header)),
	})
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selecciona una imagen"})
		case errors.Is(err, upload.ErrUnsupportedType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		case errors.Is(err, upload.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			_ = c.Error(err)
			h.log.Error().Err(err).Msg("image upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Error al subir la imagen"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}
