package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/api/http/response"
	"github.com/dtroode/videotube-server/internal/apierror"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

// AccountService defines user account operations.
type AccountService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.PublicUser, error)
	Login(ctx context.Context, params model.LoginParams) (model.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (model.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error)
}

// ChannelService defines channel queries.
type ChannelService interface {
	Profile(ctx context.Context, viewerID uuid.UUID, username string) (model.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchedVideo, error)
}

// handleError logs err and writes its envelope. Expected failures are
// logged at info level, everything else at error level.
func handleError(c *gin.Context, lg *logger.Logger, op string, err error) {
	if apiErr, ok := apierror.As(err); ok && apiErr.Kind != apierror.KindInternal {
		lg.Info(op+" rejected",
			"path", c.FullPath(),
			"error", err.Error())
	} else {
		lg.Error(op+" failed",
			"path", c.FullPath(),
			"error", err.Error())
	}
	response.Error(c, err)
}

// userIDFromRequest returns the id attached by the session middleware.
func userIDFromRequest(c *gin.Context, cm model.ContextManager) (uuid.UUID, error) {
	userID, ok := cm.GetUserIDFromContext(c.Request.Context())
	if !ok {
		return uuid.Nil, apierror.Unauthorized("unauthorized request")
	}
	return userID, nil
}
