package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/apierror"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
	"github.com/dtroode/videotube-server/internal/password"
	"github.com/dtroode/videotube-server/internal/storage"
)

const msgPasswordTooLong = "password must be at most 72 bytes"

// TokenIssuer is the part of TokenService that account flows depend on.
type TokenIssuer interface {
	IssuePair(ctx context.Context, userID uuid.UUID) (model.TokenPair, error)
	VerifyAndRotateRefresh(ctx context.Context, token string) (model.TokenPair, error)
	Revoke(ctx context.Context, userID uuid.UUID) error
}

var _ TokenIssuer = (*TokenService)(nil)

// Account implements registration, login, session refresh and profile
// maintenance.
type Account struct {
	users  model.UserStore
	media  model.MediaStore
	tokens TokenIssuer
	hasher model.PasswordHasher
	logger *logger.Logger
}

func NewAccount(
	users model.UserStore,
	media model.MediaStore,
	tokens TokenIssuer,
	hasher model.PasswordHasher,
	logger *logger.Logger,
) *Account {
	return &Account{
		users:  users,
		media:  media,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a user with an uploaded avatar and optional cover image.
// Media uploaded before a failed write is deleted on a best-effort basis.
func (a *Account) Register(ctx context.Context, params model.RegisterParams) (model.PublicUser, error) {
	fullName := strings.TrimSpace(params.FullName)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.ToLower(strings.TrimSpace(params.Username))

	// Uploads remove their own file; this catches the ones never uploaded.
	defer storage.RemoveTemp(params.AvatarPath, params.CoverImagePath)

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(params.Password) == "" {
		return model.PublicUser{}, apierror.BadRequest("All fields are required")
	}
	if err := password.Validate(params.Password); err != nil {
		return model.PublicUser{}, apierror.BadRequest(msgPasswordTooLong).WithCause(err)
	}

	a.logger.Debug("Account service: starting user registration",
		"username", username,
		"email", email)

	_, err := a.users.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		a.logger.Info("Account service: user already exists",
			"username", username,
			"email", email)
		return model.PublicUser{}, apierror.Conflict("User with email or username already exists")
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, fmt.Errorf("failed to check existing user: %w", err)
	}

	if params.AvatarPath == "" {
		return model.PublicUser{}, apierror.BadRequest("avatar file is missing")
	}

	avatar, err := a.media.Upload(ctx, params.AvatarPath)
	if err != nil {
		a.logger.Error("Account service: failed to upload avatar",
			"username", username,
			"error", err.Error())
		return model.PublicUser{}, apierror.Internal("failed to upload avatar").WithCause(err)
	}
	uploaded := []model.Media{avatar}

	var cover model.Media
	if params.CoverImagePath != "" {
		cover, err = a.media.Upload(ctx, params.CoverImagePath)
		if err != nil {
			a.logger.Error("Account service: failed to upload cover image",
				"username", username,
				"error", err.Error())
			a.discardMedia(ctx, uploaded...)
			return model.PublicUser{}, apierror.Internal("failed to upload cover image").WithCause(err)
		}
		uploaded = append(uploaded, cover)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.discardMedia(ctx, uploaded...)
		if errors.Is(err, password.ErrTooLong) {
			return model.PublicUser{}, apierror.BadRequest(msgPasswordTooLong).WithCause(err)
		}
		return model.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := a.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		a.logger.Error("Account service: failed to create user",
			"username", username,
			"error", err.Error())
		a.discardMedia(ctx, uploaded...)
		if errors.Is(err, model.ErrConflict) {
			return model.PublicUser{}, apierror.Conflict("User with email or username already exists")
		}
		return model.PublicUser{}, apierror.Internal("Something went wrong while registering the user").WithCause(err)
	}

	user, err := a.users.GetByID(ctx, created.ID)
	if err != nil {
		a.logger.Error("Account service: failed to read created user",
			"user_id", created.ID,
			"error", err.Error())
		a.discardMedia(ctx, uploaded...)
		return model.PublicUser{}, apierror.Internal("Something went wrong while registering the user").WithCause(err)
	}

	a.logger.Info("Account service: user registered",
		"user_id", user.ID,
		"username", user.Username)

	return user.Public(), nil
}

// Login verifies credentials and starts a new session.
func (a *Account) Login(ctx context.Context, params model.LoginParams) (model.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.ToLower(strings.TrimSpace(params.Username))

	if email == "" && username == "" {
		return model.LoginResult{}, apierror.BadRequest("username or email is required")
	}
	if params.Password == "" {
		return model.LoginResult{}, apierror.BadRequest("password is required")
	}

	user, err := a.users.GetByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.LoginResult{}, apierror.NotFound("User does not exist")
	}
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, params.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			a.logger.Info("Account service: invalid credentials",
				"user_id", user.ID)
			return model.LoginResult{}, apierror.Unauthorized("Invalid user credentials")
		}
		return model.LoginResult{}, fmt.Errorf("failed to verify password: %w", err)
	}

	pair, err := a.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}

	a.logger.Info("Account service: user logged in",
		"user_id", user.ID)

	return model.LoginResult{User: user.Public(), Tokens: pair}, nil
}

// Refresh rotates the session's token pair.
func (a *Account) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is required")
	}

	return a.tokens.VerifyAndRotateRefresh(ctx, refreshToken)
}

// Logout revokes the user's refresh token.
func (a *Account) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokens.Revoke(ctx, userID); err != nil {
		return err
	}

	a.logger.Info("Account service: user logged out",
		"user_id", userID)

	return nil
}

func (a *Account) CurrentUser(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	user, err := a.getUser(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// ChangePassword replaces the password and ends every other session.
func (a *Account) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apierror.BadRequest("old and new passwords are required")
	}
	if err := password.Validate(newPassword); err != nil {
		return apierror.BadRequest(msgPasswordTooLong).WithCause(err)
	}

	user, err := a.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := a.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return apierror.Unauthorized("invalid old password")
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	hash, err := a.hasher.Hash(newPassword)
	if errors.Is(err, password.ErrTooLong) {
		return apierror.BadRequest(msgPasswordTooLong).WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.tokens.Revoke(ctx, userID); err != nil {
		return err
	}

	a.logger.Info("Account service: password changed",
		"user_id", userID)

	return nil
}

func (a *Account) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (model.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return model.PublicUser{}, apierror.BadRequest("All fields are required")
	}

	user, err := a.users.UpdateAccount(ctx, userID, fullName, email)
	switch {
	case errors.Is(err, model.ErrConflict):
		return model.PublicUser{}, apierror.Conflict("Email is already in use")
	case errors.Is(err, model.ErrNotFound):
		return model.PublicUser{}, apierror.NotFound("User does not exist")
	case err != nil:
		return model.PublicUser{}, fmt.Errorf("failed to update account: %w", err)
	}

	return user.Public(), nil
}

func (a *Account) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	if localPath == "" {
		return model.PublicUser{}, apierror.BadRequest("avatar file is missing")
	}

	return a.replaceMedia(ctx, userID, localPath, "avatar",
		func(u model.User) model.Media { return u.Avatar },
		a.users.UpdateAvatar)
}

func (a *Account) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	if localPath == "" {
		return model.PublicUser{}, apierror.BadRequest("cover image file is missing")
	}

	return a.replaceMedia(ctx, userID, localPath, "cover image",
		func(u model.User) model.Media { return u.CoverImage },
		a.users.UpdateCoverImage)
}

// replaceMedia uploads a new file, points the user at it and then drops
// the previous one.
func (a *Account) replaceMedia(
	ctx context.Context,
	userID uuid.UUID,
	localPath string,
	what string,
	current func(model.User) model.Media,
	update func(context.Context, uuid.UUID, model.Media) (model.User, error),
) (model.PublicUser, error) {
	defer storage.RemoveTemp(localPath)

	user, err := a.getUser(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	previous := current(user)

	media, err := a.media.Upload(ctx, localPath)
	if err != nil {
		a.logger.Error("Account service: failed to upload "+what,
			"user_id", userID,
			"error", err.Error())
		return model.PublicUser{}, apierror.Internal("failed to upload " + what).WithCause(err)
	}

	updated, err := update(ctx, userID, media)
	if err != nil {
		a.discardMedia(ctx, media)
		if errors.Is(err, model.ErrNotFound) {
			return model.PublicUser{}, apierror.NotFound("User does not exist")
		}
		return model.PublicUser{}, fmt.Errorf("failed to update %s: %w", what, err)
	}

	if previous.PublicID != "" {
		a.discardMedia(ctx, previous)
	}

	return updated.Public(), nil
}

func (a *Account) getUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.NotFound("User does not exist")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// discardMedia deletes uploaded media. Failures are logged and dropped so
// that they never mask the error being returned to the caller. Deletes run
// even if the request context is already cancelled.
func (a *Account) discardMedia(ctx context.Context, media ...model.Media) {
	ctx = context.WithoutCancel(ctx)
	for _, m := range media {
		if err := a.media.Delete(ctx, m.PublicID); err != nil {
			a.logger.Error("Account service: failed to delete media",
				"public_id", m.PublicID,
				"error", err.Error())
		}
	}
}
