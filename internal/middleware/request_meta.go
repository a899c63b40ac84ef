package middleware

import (
	"bank-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// RequestMeta attaches the caller's identity to the request context so services
// can record it on the transactions they create. It must run after AuthMiddleware.
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := services.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: c.GetString("RequestID"),
		}
		if user := CurrentUser(c); user != nil {
			meta.UserID = user.ID
		}
		c.Request = c.Request.WithContext(services.WithRequestMeta(c.Request.Context(), meta))
		c.Next()
	}
}
