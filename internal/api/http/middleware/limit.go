package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody caps request bodies. Multipart uploads get uploadLimit, every
// other body gets bodyLimit.
func LimitBody(bodyLimit, uploadLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := bodyLimit
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			limit = uploadLimit
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
