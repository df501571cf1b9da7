package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/apierror"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

// Channel serves the channel profile and watch history aggregations.
type Channel struct {
	channels model.ChannelStore
	logger   *logger.Logger
}

func NewChannel(channels model.ChannelStore, logger *logger.Logger) *Channel {
	return &Channel{channels: channels, logger: logger}
}

func (c *Channel) Profile(ctx context.Context, viewerID uuid.UUID, username string) (model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return model.ChannelProfile{}, apierror.BadRequest("username is missing")
	}

	profile, err := c.channels.GetChannelProfile(ctx, viewerID, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.ChannelProfile{}, apierror.NotFound("channel not found")
	}
	if err != nil {
		c.logger.Error("Channel service: failed to get channel profile",
			"username", username,
			"error", err.Error())
		return model.ChannelProfile{}, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return profile, nil
}

func (c *Channel) WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchedVideo, error) {
	history, err := c.channels.GetWatchHistory(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apierror.NotFound("User does not exist")
	}
	if err != nil {
		c.logger.Error("Channel service: failed to get watch history",
			"user_id", userID,
			"error", err.Error())
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}

	return history, nil
}
