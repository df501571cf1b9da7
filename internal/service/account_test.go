package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/videotube-server/internal/apierror"
	servermocks "github.com/dtroode/videotube-server/internal/mocks"
	"github.com/dtroode/videotube-server/internal/model"
	"github.com/dtroode/videotube-server/internal/password"
	"github.com/dtroode/videotube-server/internal/testutil"
)

type accountDeps struct {
	users  *servermocks.UserStore
	media  *servermocks.MediaStore
	tokens *servermocks.TokenIssuer
	hasher *servermocks.PasswordHasher
}

func newAccount(t *testing.T) (*Account, accountDeps) {
	d := accountDeps{
		users:  servermocks.NewUserStore(t),
		media:  servermocks.NewMediaStore(t),
		tokens: servermocks.NewTokenIssuer(t),
		hasher: servermocks.NewPasswordHasher(t),
	}
	return NewAccount(d.users, d.media, d.tokens, d.hasher, testutil.MakeNoopLogger()), d
}

func validRegisterParams(t *testing.T) model.RegisterParams {
	dir := t.TempDir()
	return model.RegisterParams{
		FullName:   "A B",
		Email:      "A@B.com",
		Username:   "AB",
		Password:   "x",
		AvatarPath: filepath.Join(dir, "avatar.png"),
	}
}

func TestAccount_Register_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		params model.RegisterParams
	}{
		{name: "empty full name", params: model.RegisterParams{FullName: " ", Email: "a@b.com", Username: "ab", Password: "x"}},
		{name: "empty email", params: model.RegisterParams{FullName: "A B", Email: "", Username: "ab", Password: "x"}},
		{name: "empty username", params: model.RegisterParams{FullName: "A B", Email: "a@b.com", Username: "\t", Password: "x"}},
		{name: "empty password", params: model.RegisterParams{FullName: "A B", Email: "a@b.com", Username: "ab", Password: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAccount(t)

			_, err := svc.Register(ctx, tt.params)
			require.Error(t, err)
			apiErr, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, apierror.KindBadRequest, apiErr.Kind)
			assert.Equal(t, "All fields are required", apiErr.Message)
		})
	}
}

func TestAccount_Register_Conflict(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{ID: uuid.New()}, nil).Once()

	_, err := svc.Register(ctx, params)
	require.ErrorIs(t, err, apierror.Conflict(""))
	d.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccount_Register_MissingAvatar(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	params.AvatarPath = ""

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()

	_, err := svc.Register(ctx, params)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindBadRequest, apiErr.Kind)
	assert.Equal(t, "avatar file is missing", apiErr.Message)
	d.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestAccount_Register_AvatarUploadFails(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Upload", ctx, params.AvatarPath).Return(model.Media{}, errors.New("timeout")).Once()

	_, err := svc.Register(ctx, params)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindInternal, apiErr.Kind)
	assert.Equal(t, "failed to upload avatar", apiErr.Message)
}

func TestAccount_Register_CoverUploadFailsDeletesAvatar(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	params.CoverImagePath = filepath.Join(t.TempDir(), "cover.png")
	avatar := model.Media{URL: "http://m/a.png", PublicID: "a.png"}

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Upload", ctx, params.AvatarPath).Return(avatar, nil).Once()
	d.media.On("Upload", ctx, params.CoverImagePath).Return(model.Media{}, errors.New("timeout")).Once()
	d.media.On("Delete", mock.Anything, "a.png").Return(nil).Once()

	_, err := svc.Register(ctx, params)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "failed to upload cover image", apiErr.Message)
}

func TestAccount_Register_CreateFailsCompensates(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	params.CoverImagePath = filepath.Join(t.TempDir(), "cover.png")
	avatar := model.Media{URL: "http://m/a.png", PublicID: "a.png"}
	cover := model.Media{URL: "http://m/c.png", PublicID: "c.png"}

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Upload", ctx, params.AvatarPath).Return(avatar, nil).Once()
	d.media.On("Upload", ctx, params.CoverImagePath).Return(cover, nil).Once()
	d.hasher.On("Hash", "x").Return([]byte("hash"), nil).Once()
	d.users.On("Create", ctx, mock.Anything).Return(model.User{}, errors.New("db down")).Once()
	// Compensation failures are swallowed.
	d.media.On("Delete", mock.Anything, "a.png").Return(errors.New("gone")).Once()
	d.media.On("Delete", mock.Anything, "c.png").Return(nil).Once()

	_, err := svc.Register(ctx, params)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))
}

func TestAccount_Register_ReadBackFailsCompensates(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	avatar := model.Media{URL: "http://m/a.png", PublicID: "a.png"}
	id := uuid.New()

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Upload", ctx, params.AvatarPath).Return(avatar, nil).Once()
	d.hasher.On("Hash", "x").Return([]byte("hash"), nil).Once()
	d.users.On("Create", ctx, mock.Anything).Return(model.User{ID: id}, nil).Once()
	d.users.On("GetByID", ctx, id).Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Delete", mock.Anything, "a.png").Return(nil).Once()

	_, err := svc.Register(ctx, params)
	assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))
}

func TestAccount_Register_Success(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	require.NoError(t, os.WriteFile(params.AvatarPath, []byte("img"), 0o600))
	avatar := model.Media{URL: "http://m/a.png", PublicID: "a.png"}
	stored := model.User{
		ID:           uuid.New(),
		Username:     "ab",
		Email:        "a@b.com",
		FullName:     "A B",
		Avatar:       avatar,
		PasswordHash: []byte("hash"),
	}

	d.users.On("GetByUsernameOrEmail", ctx, "ab", "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	d.media.On("Upload", ctx, params.AvatarPath).Return(avatar, nil).Once()
	d.hasher.On("Hash", "x").Return([]byte("hash"), nil).Once()
	d.users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.Username == "ab" && u.Email == "a@b.com" && u.FullName == "A B" &&
			u.Avatar == avatar && string(u.PasswordHash) == "hash" && u.ID != uuid.Nil
	})).Return(stored, nil).Once()
	d.users.On("GetByID", ctx, stored.ID).Return(stored, nil).Once()

	got, err := svc.Register(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "ab", got.Username)
	assert.Equal(t, "http://m/a.png", got.Avatar)

	_, statErr := os.Stat(params.AvatarPath)
	assert.True(t, os.IsNotExist(statErr), "temp avatar must be removed")
}

func TestAccount_Login(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Username: "ab", Email: "a@b.com", PasswordHash: []byte("hash")}
	pair := model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	tests := []struct {
		name     string
		params   model.LoginParams
		setup    func(accountDeps)
		wantKind apierror.Kind
		wantErr  bool
	}{
		{
			name:     "no identifier",
			params:   model.LoginParams{Password: "x"},
			setup:    func(accountDeps) {},
			wantKind: apierror.KindBadRequest,
			wantErr:  true,
		},
		{
			name:     "no password",
			params:   model.LoginParams{Username: "ab"},
			setup:    func(accountDeps) {},
			wantKind: apierror.KindBadRequest,
			wantErr:  true,
		},
		{
			name:   "unknown user",
			params: model.LoginParams{Email: "nobody@b.com", Password: "x"},
			setup: func(d accountDeps) {
				d.users.On("GetByUsernameOrEmail", ctx, "", "nobody@b.com").Return(model.User{}, model.ErrNotFound).Once()
			},
			wantKind: apierror.KindNotFound,
			wantErr:  true,
		},
		{
			name:   "wrong password",
			params: model.LoginParams{Username: "AB", Password: "wrong"},
			setup: func(d accountDeps) {
				d.users.On("GetByUsernameOrEmail", ctx, "ab", "").Return(user, nil).Once()
				d.hasher.On("Compare", user.PasswordHash, "wrong").Return(password.ErrMismatch).Once()
			},
			wantKind: apierror.KindUnauthorized,
			wantErr:  true,
		},
		{
			name:   "success",
			params: model.LoginParams{Email: "a@b.com", Password: "x"},
			setup: func(d accountDeps) {
				d.users.On("GetByUsernameOrEmail", ctx, "", "a@b.com").Return(user, nil).Once()
				d.hasher.On("Compare", user.PasswordHash, "x").Return(nil).Once()
				d.tokens.On("IssuePair", ctx, user.ID).Return(pair, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newAccount(t)
			tt.setup(d)

			got, err := svc.Login(ctx, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apierror.KindOf(err))
				d.tokens.AssertNotCalled(t, "IssuePair", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, pair, got.Tokens)
			assert.Equal(t, user.ID, got.User.ID)
		})
	}
}

func TestAccount_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		svc, _ := newAccount(t)
		_, err := svc.Refresh(ctx, "")
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindUnauthorized, apiErr.Kind)
		assert.Equal(t, "refresh token is required", apiErr.Message)
	})

	t.Run("rotates", func(t *testing.T) {
		svc, d := newAccount(t)
		pair := model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}
		d.tokens.On("VerifyAndRotateRefresh", ctx, "r1").Return(pair, nil).Once()

		got, err := svc.Refresh(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, pair, got)
	})
}

func TestAccount_Logout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, d := newAccount(t)

	d.tokens.On("Revoke", ctx, userID).Return(nil).Twice()

	require.NoError(t, svc.Logout(ctx, userID))
	require.NoError(t, svc.Logout(ctx, userID))
}

func TestAccount_CurrentUser(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Username: "ab", PasswordHash: []byte("hash")}

	svc, d := newAccount(t)
	d.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	d.users.On("GetByID", ctx, mock.Anything).Return(model.User{}, model.ErrNotFound).Once()

	got, err := svc.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ab", got.Username)

	_, err = svc.CurrentUser(ctx, uuid.New())
	require.ErrorIs(t, err, apierror.NotFound(""))
}

func TestAccount_ChangePassword(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New(), PasswordHash: []byte("old-hash")}

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newAccount(t)
		err := svc.ChangePassword(ctx, user.ID, "", "new")
		require.ErrorIs(t, err, apierror.BadRequest(""))
	})

	t.Run("wrong old password", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		d.hasher.On("Compare", user.PasswordHash, "bad").Return(password.ErrMismatch).Once()

		err := svc.ChangePassword(ctx, user.ID, "bad", "new")
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindUnauthorized, apiErr.Kind)
		assert.Equal(t, "invalid old password", apiErr.Message)
	})

	t.Run("changes and revokes", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		d.hasher.On("Compare", user.PasswordHash, "old").Return(nil).Once()
		d.hasher.On("Hash", "new").Return([]byte("new-hash"), nil).Once()
		d.users.On("UpdatePassword", ctx, user.ID, []byte("new-hash")).Return(nil).Once()
		d.tokens.On("Revoke", ctx, user.ID).Return(nil).Once()

		require.NoError(t, svc.ChangePassword(ctx, user.ID, "old", "new"))
	})
}

func TestAccount_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newAccount(t)
		_, err := svc.UpdateAccount(ctx, userID, "", "a@b.com")
		require.ErrorIs(t, err, apierror.BadRequest(""))
	})

	t.Run("email taken", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("UpdateAccount", ctx, userID, "A B", "taken@b.com").Return(model.User{}, model.ErrConflict).Once()

		_, err := svc.UpdateAccount(ctx, userID, " A B ", "Taken@B.com")
		require.ErrorIs(t, err, apierror.Conflict(""))
	})

	t.Run("updated", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("UpdateAccount", ctx, userID, "New", "new@b.com").
			Return(model.User{ID: userID, FullName: "New", Email: "new@b.com"}, nil).Once()

		got, err := svc.UpdateAccount(ctx, userID, "New", "new@b.com")
		require.NoError(t, err)
		assert.Equal(t, "New", got.FullName)
	})
}

func TestAccount_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	oldAvatar := model.Media{URL: "http://m/old.png", PublicID: "old.png"}
	newAvatar := model.Media{URL: "http://m/new.png", PublicID: "new.png"}
	path := filepath.Join(t.TempDir(), "new.png")

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newAccount(t)
		_, err := svc.UpdateAvatar(ctx, userID, "")
		require.ErrorIs(t, err, apierror.BadRequest(""))
	})

	t.Run("upload fails", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, userID).Return(model.User{ID: userID, Avatar: oldAvatar}, nil).Once()
		d.media.On("Upload", ctx, path).Return(model.Media{}, errors.New("timeout")).Once()

		_, err := svc.UpdateAvatar(ctx, userID, path)
		assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))
		d.users.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replaces and deletes previous", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, userID).Return(model.User{ID: userID, Avatar: oldAvatar}, nil).Once()
		d.media.On("Upload", ctx, path).Return(newAvatar, nil).Once()
		d.users.On("UpdateAvatar", ctx, userID, newAvatar).Return(model.User{ID: userID, Avatar: newAvatar}, nil).Once()
		d.media.On("Delete", mock.Anything, "old.png").Return(nil).Once()

		got, err := svc.UpdateAvatar(ctx, userID, path)
		require.NoError(t, err)
		assert.Equal(t, newAvatar.URL, got.Avatar)
	})
}

func TestAccount_UpdateCoverImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cover := model.Media{URL: "http://m/c.png", PublicID: "c.png"}
	path := filepath.Join(t.TempDir(), "c.png")

	t.Run("first cover has nothing to delete", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, userID).Return(model.User{ID: userID}, nil).Once()
		d.media.On("Upload", ctx, path).Return(cover, nil).Once()
		d.users.On("UpdateCoverImage", ctx, userID, cover).Return(model.User{ID: userID, CoverImage: cover}, nil).Once()

		got, err := svc.UpdateCoverImage(ctx, userID, path)
		require.NoError(t, err)
		assert.Equal(t, cover.URL, got.CoverImage)
		d.media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("update fails deletes new upload", func(t *testing.T) {
		svc, d := newAccount(t)
		d.users.On("GetByID", ctx, userID).Return(model.User{ID: userID}, nil).Once()
		d.media.On("Upload", ctx, path).Return(cover, nil).Once()
		d.users.On("UpdateCoverImage", ctx, userID, cover).Return(model.User{}, errors.New("db down")).Once()
		d.media.On("Delete", mock.Anything, "c.png").Return(nil).Once()

		_, err := svc.UpdateCoverImage(ctx, userID, path)
		require.Error(t, err)
	})
}

// TestAccount_SessionLifecycle runs login, refresh and logout against the
// real token service, bcrypt and an in-memory store.
func TestAccount_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	user, err := store.Create(ctx, model.User{ID: uuid.New(), Username: "ab", Email: "a@b.com", PasswordHash: hash})
	require.NoError(t, err)

	tokens := NewTokenService(newJWT(), store, testutil.MakeNoopLogger())
	svc := NewAccount(store, servermocks.NewMediaStore(t), tokens, hasher, testutil.MakeNoopLogger())

	_, err = svc.Login(ctx, model.LoginParams{Username: "ab", Password: "wrong"})
	require.ErrorIs(t, err, apierror.Unauthorized(""))
	assert.Nil(t, store.refreshHash(user.ID))

	login, err := svc.Login(ctx, model.LoginParams{Email: "A@B.com", Password: "s3cret"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.ErrorIs(t, err, apierror.Unauthorized(""))

	require.NoError(t, svc.Logout(ctx, user.ID))
	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, apierror.Unauthorized(""))

	// A new login after logout works and its token can be refreshed.
	again, err := svc.Login(ctx, model.LoginParams{Username: "ab", Password: "s3cret"})
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, again.Tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "s3cret", "n3w"))
	assert.Nil(t, store.refreshHash(user.ID))
}

func TestAccount_Register_PasswordTooLong(t *testing.T) {
	ctx := context.Background()
	svc, d := newAccount(t)
	params := validRegisterParams(t)
	params.Password = strings.Repeat("p", password.MaxLength+1)
	require.NoError(t, os.WriteFile(params.AvatarPath, []byte("img"), 0o600))

	_, err := svc.Register(ctx, params)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindBadRequest, apiErr.Kind)
	assert.Equal(t, "password must be at most 72 bytes", apiErr.Message)

	d.users.AssertNotCalled(t, "GetByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
	d.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	_, statErr := os.Stat(params.AvatarPath)
	assert.True(t, os.IsNotExist(statErr), "temp avatar must be removed")
}

func TestAccount_Register_PasswordTooLong_RealHasher(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewAccount(store, servermocks.NewMediaStore(t), servermocks.NewTokenIssuer(t),
		password.NewBcrypt(bcrypt.MinCost), testutil.MakeNoopLogger())

	params := validRegisterParams(t)
	params.Password = strings.Repeat("p", password.MaxLength+1)

	_, err := svc.Register(ctx, params)
	assert.Equal(t, apierror.KindBadRequest, apierror.KindOf(err))
}

func TestAccount_ChangePassword_TooLong(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	hash, err := hasher.Hash("old")
	require.NoError(t, err)
	user, err := store.Create(ctx, model.User{ID: uuid.New(), Username: "ab", Email: "a@b.com", PasswordHash: hash})
	require.NoError(t, err)

	svc := NewAccount(store, servermocks.NewMediaStore(t), servermocks.NewTokenIssuer(t), hasher, testutil.MakeNoopLogger())

	err = svc.ChangePassword(ctx, user.ID, "old", strings.Repeat("p", password.MaxLength+1))
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindBadRequest, apiErr.Kind)
	assert.Equal(t, "password must be at most 72 bytes", apiErr.Message)

	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, stored.PasswordHash)
}
