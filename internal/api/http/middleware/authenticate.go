package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/api/http/response"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

const accessTokenCookie = "accessToken"

// TokenService resolves user ID from access tokens.
type TokenService interface {
	VerifyAccess(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates access tokens and attaches the user ID to the request.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle reads the token from the Authorization header, falling back to the
// accessToken cookie. A rejected request is aborted with 401.
func (m *Authenticate) Handle(c *gin.Context) {
	tokenString := bearerToken(c.GetHeader("Authorization"))
	if tokenString == "" {
		tokenString, _ = c.Cookie(accessTokenCookie)
	}

	userID, err := m.tokenService.VerifyAccess(c.Request.Context(), tokenString)
	if err != nil || userID == uuid.Nil {
		m.logger.Debug("Authenticate middleware: request rejected",
			"path", c.Request.URL.Path)
		if err != nil {
			response.Error(c, err)
		} else {
			response.Abort(c, http.StatusUnauthorized, "invalid access token")
		}
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetUserIDToContext(c.Request.Context(), userID))
	c.Next()
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
