package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, email, full_name, avatar_url, avatar_public_id,
	cover_image_url, cover_image_public_id, password_hash, refresh_token_hash, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Avatar.URL, &user.Avatar.PublicID,
		&user.CoverImage.URL, &user.CoverImage.PublicID,
		&user.PasswordHash, &user.RefreshTokenHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
			  ORDER BY created_at
			  LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username or email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, username, email, full_name, avatar_url, avatar_public_id,
			  cover_image_url, cover_image_public_id, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.FullName,
		user.Avatar.URL, user.Avatar.PublicID,
		user.CoverImage.URL, user.CoverImage.PublicID,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	var (
		res sql.Result
		err error
	)
	if hash == nil {
		query := `UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE id = $1`
		res, err = r.db.ExecContext(ctx, query, id)
	} else {
		query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`
		res, err = r.db.ExecContext(ctx, query, id, hash)
	}
	if err != nil {
		return fmt.Errorf("failed to set refresh token hash: %w", err)
	}

	return expectAffected(res, model.ErrNotFound)
}

func (r *UserRepository) RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash []byte) error {
	query := `UPDATE users SET refresh_token_hash = $3, updated_at = NOW()
			  WHERE id = $1 AND refresh_token_hash = $2`

	res, err := r.db.ExecContext(ctx, query, id, oldHash, newHash)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token hash: %w", err)
	}

	return expectAffected(res, model.ErrTokenSuperseded)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectAffected(res, model.ErrNotFound)
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (model.User, error) {
	query := `UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	return r.updateReturning(ctx, "account", query, id, fullName, email)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar model.Media) (model.User, error) {
	query := `UPDATE users SET avatar_url = $2, avatar_public_id = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	return r.updateReturning(ctx, "avatar", query, id, avatar.URL, avatar.PublicID)
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, cover model.Media) (model.User, error) {
	query := `UPDATE users SET cover_image_url = $2, cover_image_public_id = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	return r.updateReturning(ctx, "cover image", query, id, cover.URL, cover.PublicID)
}

func (r *UserRepository) updateReturning(ctx context.Context, what, query string, args ...any) (model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to update %s: %w", what, err)
	}

	return user, nil
}

func expectAffected(res sql.Result, errNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return errNone
	}
	return nil
}
