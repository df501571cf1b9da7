package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChannelStore runs the channel aggregation queries.
type ChannelStore interface {
	GetChannelProfile(ctx context.Context, viewerID uuid.UUID, username string) (ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchedVideo, error)
}

// ChannelProfile is a user enriched with subscription counters.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"_id"`
	Username                  string    `json:"username"`
	Email                     string    `json:"email"`
	FullName                  string    `json:"fullname"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}

// VideoOwner is the projection of a video's owner.
type VideoOwner struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// WatchedVideo is a watch history entry.
type WatchedVideo struct {
	ID              uuid.UUID  `json:"_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	VideoURL        string     `json:"videoFile"`
	ThumbnailURL    string     `json:"thumbnail"`
	DurationSeconds int        `json:"duration"`
	Views           int64      `json:"views"`
	Owner           VideoOwner `json:"owner"`
	WatchedAt       time.Time  `json:"watchedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}
