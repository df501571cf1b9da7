package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/api/http/response"
	"github.com/dtroode/videotube-server/internal/apierror"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
	"github.com/dtroode/videotube-server/internal/storage"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
}

type loginResponse struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// User handles the /users endpoints.
type User struct {
	accounts       AccountService
	contextManager model.ContextManager
	cookies        *Cookies
	uploads        *Uploads
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(
	accounts AccountService,
	contextManager model.ContextManager,
	cookies *Cookies,
	uploads *Uploads,
	logger *logger.Logger,
) *User {
	return &User{
		accounts:       accounts,
		contextManager: contextManager,
		cookies:        cookies,
		uploads:        uploads,
		logger:         logger,
	}
}

// Register handles POST /users/register.
func (h *User) Register(c *gin.Context) {
	form, err := parseForm(c)
	if err != nil {
		handleError(c, h.logger, "User handler: register", err)
		return
	}

	avatarPath, err := h.uploads.save(c, form, "avatar")
	if err != nil {
		handleError(c, h.logger, "User handler: register", err)
		return
	}
	coverPath, err := h.uploads.save(c, form, "coverImage")
	if err != nil {
		storage.RemoveTemp(avatarPath)
		handleError(c, h.logger, "User handler: register", err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), model.RegisterParams{
		FullName:       formValue(form, "fullname"),
		Email:          formValue(form, "email"),
		Username:       formValue(form, "username"),
		Password:       formValue(form, "password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		handleError(c, h.logger, "User handler: register", err)
		return
	}

	h.logger.Info("User handler: user registered",
		"user_id", user.ID)

	response.JSON(c, http.StatusCreated, user, "User registered Successfully")
}

// Login handles POST /users/login. The body may be JSON or a form.
func (h *User) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		handleError(c, h.logger, "User handler: login", apierror.BadRequest("invalid request body").WithCause(err))
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), model.LoginParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.logger, "User handler: login", err)
		return
	}

	h.cookies.Set(c, result.Tokens)
	response.JSON(c, http.StatusOK, loginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged In Successfully")
}

// RefreshToken handles POST /users/refresh-token. The token is read from
// the refreshToken cookie, falling back to the body.
func (h *User) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(RefreshTokenCookie)
	if err != nil || token == "" {
		var req refreshRequest
		// An empty or malformed body leaves the token empty, which the
		// account service rejects.
		_ = c.ShouldBind(&req)
		token = req.RefreshToken
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		handleError(c, h.logger, "User handler: refresh token", err)
		return
	}

	h.cookies.Set(c, pair)
	response.JSON(c, http.StatusOK, pair, "Access token refreshed")
}

// Logout handles POST /users/logout.
func (h *User) Logout(c *gin.Context) {
	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "User handler: logout", err)
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), userID); err != nil {
		handleError(c, h.logger, "User handler: logout", err)
		return
	}

	h.cookies.Clear(c)
	response.JSON(c, http.StatusOK, nil, "User logged Out")
}

// CurrentUser handles GET /users/current-user.
func (h *User) CurrentUser(c *gin.Context) {
	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "User handler: current user", err)
		return
	}

	user, err := h.accounts.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, "User handler: current user", err)
		return
	}

	response.JSON(c, http.StatusOK, user, "User fetched successfully")
}

// ChangePassword handles POST /users/change-password.
func (h *User) ChangePassword(c *gin.Context) {
	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "User handler: change password", err)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		handleError(c, h.logger, "User handler: change password", apierror.BadRequest("invalid request body").WithCause(err))
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleError(c, h.logger, "User handler: change password", err)
		return
	}

	response.JSON(c, http.StatusOK, nil, "Password changed successfully")
}

// UpdateAccount handles PATCH /users/update-account.
func (h *User) UpdateAccount(c *gin.Context) {
	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, "User handler: update account", err)
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		handleError(c, h.logger, "User handler: update account", apierror.BadRequest("invalid request body").WithCause(err))
		return
	}

	user, err := h.accounts.UpdateAccount(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		handleError(c, h.logger, "User handler: update account", err)
		return
	}

	response.JSON(c, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar handles PATCH /users/avatar.
func (h *User) UpdateAvatar(c *gin.Context) {
	h.updateMedia(c, "avatar", "Avatar image updated successfully", h.accounts.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /users/cover-image.
func (h *User) UpdateCoverImage(c *gin.Context) {
	h.updateMedia(c, "coverImage", "Cover image updated successfully", h.accounts.UpdateCoverImage)
}

func (h *User) updateMedia(
	c *gin.Context,
	field string,
	message string,
	update func(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error),
) {
	op := "User handler: update " + field

	userID, err := userIDFromRequest(c, h.contextManager)
	if err != nil {
		handleError(c, h.logger, op, err)
		return
	}

	form, err := parseForm(c)
	if err != nil {
		handleError(c, h.logger, op, err)
		return
	}

	path, err := h.uploads.save(c, form, field)
	if err != nil {
		handleError(c, h.logger, op, err)
		return
	}

	user, err := update(c.Request.Context(), userID, path)
	if err != nil {
		handleError(c, h.logger, op, err)
		return
	}

	response.JSON(c, http.StatusOK, user, message)
}
