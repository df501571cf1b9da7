package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/model"
)

var _ model.ChannelStore = (*ChannelRepository)(nil)

type ChannelRepository struct {
	db *Connection
}

func NewChannelRepository(db *Connection) *ChannelRepository {
	return &ChannelRepository{
		db: db,
	}
}

// GetChannelProfile returns the channel owned by username with its
// subscription counters. IsSubscribed tells whether viewerID follows it.
func (r *ChannelRepository) GetChannelProfile(ctx context.Context, viewerID uuid.UUID, username string) (model.ChannelProfile, error) {
	query := `SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url,
			  (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
			  (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
			  EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
			  FROM users u
			  WHERE u.username = $1`

	var p model.ChannelProfile
	err := r.db.QueryRowContext(ctx, query, username, viewerID).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ChannelProfile{}, model.ErrNotFound
		}
		return model.ChannelProfile{}, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return p, nil
}

// GetWatchHistory returns videos watched by userID, most recent first.
func (r *ChannelRepository) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchedVideo, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, model.ErrNotFound
	}

	query := `SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration_seconds, v.views,
			  o.full_name, o.username, o.avatar_url, wh.watched_at, v.created_at
			  FROM watch_history wh
			  JOIN videos v ON v.id = wh.video_id
			  JOIN users o ON o.id = v.owner_id
			  WHERE wh.user_id = $1
			  ORDER BY wh.watched_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	history := make([]model.WatchedVideo, 0)
	for rows.Next() {
		var v model.WatchedVideo
		if err := rows.Scan(
			&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.DurationSeconds, &v.Views,
			&v.Owner.FullName, &v.Owner.Username, &v.Owner.Avatar, &v.WatchedAt, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan watch history: %w", err)
		}
		history = append(history, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch history: %w", err)
	}

	return history, nil
}
