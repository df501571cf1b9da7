package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/videotube-server/internal/model"
)

const (
	// AccessTokenCookie holds the access token.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie holds the refresh token.
	RefreshTokenCookie = "refreshToken"
)

// Cookies writes and clears the session cookies.
type Cookies struct {
	secure bool
}

// NewCookies creates a cookie writer. Secure cookies are only sent over HTTPS.
func NewCookies(secure bool) *Cookies {
	return &Cookies{secure: secure}
}

// Set writes both tokens as HttpOnly session cookies.
func (ck *Cookies) Set(c *gin.Context, pair model.TokenPair) {
	ck.write(c, AccessTokenCookie, pair.AccessToken, 0)
	ck.write(c, RefreshTokenCookie, pair.RefreshToken, 0)
}

// Clear expires both token cookies.
func (ck *Cookies) Clear(c *gin.Context) {
	ck.write(c, AccessTokenCookie, "", -1)
	ck.write(c, RefreshTokenCookie, "", -1)
}

func (ck *Cookies) write(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", ck.secure, true)
}
