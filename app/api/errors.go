package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-curator/app/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindConfig:
		return http.StatusBadRequest
	case apperr.KindTransport, apperr.KindAPI, apperr.KindParse, apperr.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"success": false, "error": "<message>"}.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "kind", string(kind), "error", err)
	} else {
		slog.Warn("Request failed", "path", c.FullPath(), "kind", string(kind), "error", err)
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   message,
	})
}
