package middleware

import (
	"net/http"
	"strings"

	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	}
}

// RequireJSON rejects bodies that are not application/json on writes.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength != 0 && !strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
				utils.RespondError(c, utils.NewAppError(http.StatusUnsupportedMediaType, "content type must be application/json"))
				return
			}
		}
		c.Next()
	}
}
