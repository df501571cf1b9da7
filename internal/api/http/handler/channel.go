package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/videotube-server/internal/api/http/response"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

// Channel handles channel profile and watch history endpoints.
type Channel struct {
	channels       ChannelService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewChannel creates a new Channel handler.
func NewChannel(channels ChannelService, contextManager model.ContextManager, logger *logger.Logger) *Channel {
	return &Channel{
		channels:       channels,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Profile handles GET /users/c/:username.
func (h *Channel) Profile(c *gin.Context) {
	viewerID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "Channel handler: profile", err)
		return
	}

	profile, err := h.channels.Profile(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		handleError(c, h.logger, "Channel handler: profile", err)
		return
	}

	response.JSON(c, http.StatusOK, profile, "User channel fetched successfully")
}

// WatchHistory handles GET /users/history.
func (h *Channel) WatchHistory(c *gin.Context) {
	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "Channel handler: watch history", err)
		return
	}

	videos, err := h.channels.WatchHistory(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, "Channel handler: watch history", err)
		return
	}

	response.JSON(c, http.StatusOK, videos, "Watch history fetched successfully")
}
