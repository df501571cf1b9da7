package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/videotube-server/internal/api/http/response"
)

// Healthcheck handles GET /healthcheck.
func Healthcheck(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "OK"}, "OK")
}
